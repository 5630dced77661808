// Package dom abstracts the minimal document surface the enhancement engine
// touches: element lookup, the singleton stylesheet, the body marker class,
// the synthetic resize notification, and scoped mutation observation.
//
// Two implementations exist: PageDocument (page.go) binds to a live page
// through Playwright, and FakeDocument (fake.go) is an in-memory document
// parsed from an HTML fixture for deterministic tests.
package dom

// Element is a handle to a node in the observed document. Handles can go
// stale: once the host page detaches the node, Attached reports false and
// cached handles must be re-resolved.
type Element interface {
	// ID returns the element's id attribute, or "" when unset.
	ID() string

	// HasClass reports whether the element carries the class.
	HasClass(name string) bool

	// HasDescendantClass reports whether any descendant carries the class.
	HasDescendantClass(name string) bool

	// Attached reports whether the element is still part of the document.
	Attached() bool

	// InlineHeight returns the element's inline style height, or "" when unset.
	InlineHeight() string

	// SetInlineHeight sets the element's inline style height. An empty
	// value clears it.
	SetInlineHeight(value string) error
}

// Mutation is one batch of observed child-list/subtree changes.
type Mutation struct {
	// Added holds the nodes added in this batch.
	Added []Element
}

// Document is the page surface the engine operates on.
type Document interface {
	// URL returns the document's current URL.
	URL() string

	// ElementByID finds an element by id.
	ElementByID(id string) (Element, bool)

	// ElementByClass finds the first element carrying the class.
	ElementByClass(name string) (Element, bool)

	// InsertStylesheet installs stylesheet text under the given reserved
	// id, replacing any existing node with that id. At most one node with
	// the id ever exists.
	InsertStylesheet(id, css string) error

	// RemoveStylesheet deletes the stylesheet with the given id, if present.
	RemoveStylesheet(id string) error

	// HasStylesheet reports whether a stylesheet with the id is present.
	HasStylesheet(id string) bool

	// AddBodyClass adds a marker class to the document body.
	AddBodyClass(name string) error

	// RemoveBodyClass removes a marker class from the document body.
	RemoveBodyClass(name string) error

	// DispatchResize emits a synthetic window resize so embedded libraries
	// recalculate their layout.
	DispatchResize() error

	// Observe watches the subtree under the container matched by selector
	// for child-list changes. The handler receives each mutation batch.
	// The observation is never torn down for the life of the document.
	Observe(containerSelector string, handler func(Mutation)) error
}
