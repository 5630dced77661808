package dom

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FakeDocument is an in-memory Document backed by a parsed HTML tree.
// Mutations are simulated with AppendHTML and Detach, which notify any
// registered observers the way a live mutation observer would.
//
// FakeDocument is intended for tests; it records stylesheet insertions,
// body class changes, and resize dispatches so assertions can inspect them.
type FakeDocument struct {
	mu  sync.Mutex
	url string

	doc  *html.Node
	body *html.Node

	stylesheets map[string]string

	// InsertCalls counts InsertStylesheet invocations per id, letting
	// idempotence tests distinguish "one sheet present" from "inserted once".
	InsertCalls map[string]int

	bodyClasses map[string]bool

	// ResizeCount counts DispatchResize invocations.
	ResizeCount int

	observers []fakeObserver
}

type fakeObserver struct {
	container *html.Node
	handler   func(Mutation)
}

// NewFakeDocument parses the HTML source into a fake document at the given URL.
func NewFakeDocument(url, src string) (*FakeDocument, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing fixture HTML: %w", err)
	}

	d := &FakeDocument{
		url:         url,
		doc:         doc,
		stylesheets: make(map[string]string),
		InsertCalls: make(map[string]int),
		bodyClasses: make(map[string]bool),
	}
	d.body = d.findFirst(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if d.body == nil {
		return nil, fmt.Errorf("fixture HTML has no body")
	}
	return d, nil
}

// URL returns the document's current URL.
func (d *FakeDocument) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

// SetURL simulates a single-page-app navigation without reloading.
func (d *FakeDocument) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

// ElementByID finds an element by id.
func (d *FakeDocument) ElementByID(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.findFirst(func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil {
		return nil, false
	}
	return &fakeElement{doc: d, node: n}, true
}

// ElementByClass finds the first element carrying the class.
func (d *FakeDocument) ElementByClass(name string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.findFirst(func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, name)
	})
	if n == nil {
		return nil, false
	}
	return &fakeElement{doc: d, node: n}, true
}

// InsertStylesheet installs stylesheet text under the reserved id,
// replacing any existing sheet with that id.
func (d *FakeDocument) InsertStylesheet(id, css string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stylesheets[id] = css
	d.InsertCalls[id]++
	return nil
}

// RemoveStylesheet deletes the stylesheet with the given id, if present.
func (d *FakeDocument) RemoveStylesheet(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.stylesheets, id)
	return nil
}

// HasStylesheet reports whether a stylesheet with the id is present.
func (d *FakeDocument) HasStylesheet(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.stylesheets[id]
	return ok
}

// StylesheetText returns the installed stylesheet text for assertions.
func (d *FakeDocument) StylesheetText(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stylesheets[id]
}

// StylesheetCount returns the number of installed stylesheets.
func (d *FakeDocument) StylesheetCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stylesheets)
}

// AddBodyClass adds a marker class to the body.
func (d *FakeDocument) AddBodyClass(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bodyClasses[name] = true
	return nil
}

// RemoveBodyClass removes a marker class from the body.
func (d *FakeDocument) RemoveBodyClass(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bodyClasses, name)
	return nil
}

// BodyHasClass reports whether the body carries the marker class.
func (d *FakeDocument) BodyHasClass(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodyClasses[name]
}

// DispatchResize records a synthetic resize.
func (d *FakeDocument) DispatchResize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ResizeCount++
	return nil
}

// Observe registers a handler for mutations under the container matched by
// selector. Supported selectors: "#id", ".class", and bare tag names.
func (d *FakeDocument) Observe(containerSelector string, handler func(Mutation)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	container := d.resolveSelector(containerSelector)
	if container == nil {
		return fmt.Errorf("no element matches container selector %q", containerSelector)
	}
	d.observers = append(d.observers, fakeObserver{container: container, handler: handler})
	return nil
}

// AppendHTML parses the fragment and appends its elements under the parent
// matched by selector, then delivers one mutation batch to every observer
// whose container encloses the parent.
func (d *FakeDocument) AppendHTML(parentSelector, fragment string) error {
	d.mu.Lock()

	parent := d.resolveSelector(parentSelector)
	if parent == nil {
		d.mu.Unlock()
		return fmt.Errorf("no element matches parent selector %q", parentSelector)
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("parsing fragment: %w", err)
	}

	var added []Element
	for _, n := range nodes {
		parent.AppendChild(n)
		if n.Type == html.ElementNode {
			added = append(added, &fakeElement{doc: d, node: n})
		}
	}

	var notify []func(Mutation)
	for _, obs := range d.observers {
		if encloses(obs.container, parent) {
			notify = append(notify, obs.handler)
		}
	}
	d.mu.Unlock()

	batch := Mutation{Added: added}
	for _, h := range notify {
		h(batch)
	}
	return nil
}

// Detach removes the element with the given id from the tree, simulating
// the host page unmounting it. Handles to it go stale.
func (d *FakeDocument) Detach(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.findFirst(func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if n == nil || n.Parent == nil {
		return false
	}
	n.Parent.RemoveChild(n)
	return true
}

func (d *FakeDocument) resolveSelector(selector string) *html.Node {
	switch {
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		return d.findFirst(func(n *html.Node) bool {
			return n.Type == html.ElementNode && attr(n, "id") == id
		})
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		return d.findFirst(func(n *html.Node) bool {
			return n.Type == html.ElementNode && hasClass(n, class)
		})
	default:
		return d.findFirst(func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == selector
		})
	}
}

func (d *FakeDocument) findFirst(match func(*html.Node) bool) *html.Node {
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if match(n) {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(d.doc)
}

// fakeElement wraps one node of the fake document.
type fakeElement struct {
	doc  *FakeDocument
	node *html.Node
}

func (e *fakeElement) ID() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.node, "id")
}

func (e *fakeElement) HasClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return hasClass(e.node, name)
}

func (e *fakeElement) HasDescendantClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, name) {
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(e.node)
}

func (e *fakeElement) Attached() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.doc {
			return true
		}
	}
	return false
}

func (e *fakeElement) InlineHeight() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, decl := range strings.Split(attr(e.node, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == "height" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (e *fakeElement) SetInlineHeight(value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var kept []string
	for _, decl := range strings.Split(attr(e.node, "style"), ";") {
		name, _, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) != "height" {
			kept = append(kept, strings.TrimSpace(decl))
		}
	}
	if value != "" {
		kept = append(kept, "height: "+value)
	}
	setAttr(e.node, "style", strings.Join(kept, "; "))
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

func encloses(container, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == container {
			return true
		}
	}
	return false
}
