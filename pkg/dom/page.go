package dom

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/fieldnote/obsmap/pkg/logging"
	"github.com/fieldnote/obsmap/pkg/schedule"
)

// mutationBinding is the name of the page-side hook the injected
// MutationObserver script reports batches through.
const mutationBinding = "__obsmapMutation"

// PageDocument binds the Document interface to a live page through
// Playwright. All observer callbacks are posted onto the loop so the engine
// sees them as serialized turns.
type PageDocument struct {
	page   playwright.Page
	loop   *schedule.Loop
	logger *logging.Logger
}

// NewPageDocument wraps a Playwright page.
func NewPageDocument(page playwright.Page, loop *schedule.Loop, logger *logging.Logger) *PageDocument {
	return &PageDocument{
		page:   page,
		loop:   loop,
		logger: logger,
	}
}

// URL returns the page's current URL.
func (d *PageDocument) URL() string {
	return d.page.URL()
}

// ElementByID finds an element by id.
func (d *PageDocument) ElementByID(id string) (Element, bool) {
	handle, err := d.page.QuerySelector("#" + id)
	if err != nil || handle == nil {
		return nil, false
	}
	return &pageElement{doc: d, handle: handle}, true
}

// ElementByClass finds the first element carrying the class.
func (d *PageDocument) ElementByClass(name string) (Element, bool) {
	handle, err := d.page.QuerySelector("." + name)
	if err != nil || handle == nil {
		return nil, false
	}
	return &pageElement{doc: d, handle: handle}, true
}

// InsertStylesheet installs stylesheet text under the reserved id,
// replacing any existing node with that id.
func (d *PageDocument) InsertStylesheet(id, css string) error {
	_, err := d.page.Evaluate(`([id, css]) => {
		const prev = document.getElementById(id);
		if (prev) prev.remove();
		const style = document.createElement('style');
		style.id = id;
		style.textContent = css;
		document.head.appendChild(style);
	}`, []interface{}{id, css})
	if err != nil {
		return fmt.Errorf("inserting stylesheet %q: %w", id, err)
	}
	return nil
}

// RemoveStylesheet deletes the stylesheet with the given id, if present.
func (d *PageDocument) RemoveStylesheet(id string) error {
	_, err := d.page.Evaluate(`(id) => {
		const node = document.getElementById(id);
		if (node) node.remove();
	}`, id)
	if err != nil {
		return fmt.Errorf("removing stylesheet %q: %w", id, err)
	}
	return nil
}

// HasStylesheet reports whether a stylesheet with the id is present.
func (d *PageDocument) HasStylesheet(id string) bool {
	result, err := d.page.Evaluate(`(id) => document.getElementById(id) !== null`, id)
	if err != nil {
		d.logger.Warnf("stylesheet presence check failed: %v", err)
		return false
	}
	present, _ := result.(bool)
	return present
}

// AddBodyClass adds a marker class to the document body.
func (d *PageDocument) AddBodyClass(name string) error {
	_, err := d.page.Evaluate(`(name) => document.body.classList.add(name)`, name)
	if err != nil {
		return fmt.Errorf("adding body class %q: %w", name, err)
	}
	return nil
}

// RemoveBodyClass removes a marker class from the document body.
func (d *PageDocument) RemoveBodyClass(name string) error {
	_, err := d.page.Evaluate(`(name) => document.body.classList.remove(name)`, name)
	if err != nil {
		return fmt.Errorf("removing body class %q: %w", name, err)
	}
	return nil
}

// DispatchResize emits a synthetic window resize event.
func (d *PageDocument) DispatchResize() error {
	_, err := d.page.Evaluate(`() => window.dispatchEvent(new Event('resize'))`)
	if err != nil {
		return fmt.Errorf("dispatching resize: %w", err)
	}
	return nil
}

// Observe installs a MutationObserver on the container and streams batch
// summaries back through an exposed page binding. Each batch arrives on the
// loop as a Mutation whose elements carry the added nodes' id/class
// signature; callers needing a live handle re-resolve by id.
func (d *PageDocument) Observe(containerSelector string, handler func(Mutation)) error {
	err := d.page.ExposeFunction(mutationBinding, func(args ...interface{}) interface{} {
		batch := decodeMutationBatch(args)
		d.loop.Post(func() {
			handler(batch)
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("exposing mutation binding: %w", err)
	}

	_, err = d.page.Evaluate(`(selector) => {
		const container = document.querySelector(selector);
		if (!container) throw new Error('no container matches ' + selector);
		const observer = new MutationObserver((mutations) => {
			const added = [];
			for (const m of mutations) {
				for (const node of m.addedNodes) {
					if (node.nodeType !== Node.ELEMENT_NODE) continue;
					added.push({
						id: node.id || '',
						classes: Array.from(node.classList || []),
						descendantClasses: Array.from(node.querySelectorAll('[class]'))
							.flatMap(el => Array.from(el.classList)),
					});
				}
			}
			if (added.length > 0) window.`+mutationBinding+`(added);
		});
		observer.observe(container, { childList: true, subtree: true });
	}`, containerSelector)
	if err != nil {
		return fmt.Errorf("installing mutation observer on %q: %w", containerSelector, err)
	}
	return nil
}

// decodeMutationBatch converts the JSON-ish payload from the page binding
// into a Mutation of summary elements.
func decodeMutationBatch(args []interface{}) Mutation {
	var batch Mutation
	if len(args) == 0 {
		return batch
	}
	entries, ok := args[0].([]interface{})
	if !ok {
		return batch
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		el := &summaryElement{
			id:                stringValue(entry["id"]),
			classes:           stringSlice(entry["classes"]),
			descendantClasses: stringSlice(entry["descendantClasses"]),
		}
		batch.Added = append(batch.Added, el)
	}
	return batch
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// summaryElement is the static snapshot of an added node as reported by the
// page-side observer. It satisfies the scanning needs of the watcher; it is
// not a live handle.
type summaryElement struct {
	id                string
	classes           []string
	descendantClasses []string
}

func (e *summaryElement) ID() string { return e.id }

func (e *summaryElement) HasClass(name string) bool {
	for _, c := range e.classes {
		if c == name {
			return true
		}
	}
	return false
}

func (e *summaryElement) HasDescendantClass(name string) bool {
	for _, c := range e.descendantClasses {
		if c == name {
			return true
		}
	}
	return false
}

// Attached is always true for a freshly reported node.
func (e *summaryElement) Attached() bool { return true }

func (e *summaryElement) InlineHeight() string { return "" }

func (e *summaryElement) SetInlineHeight(string) error {
	return fmt.Errorf("summary element is not a live handle")
}

// pageElement wraps a live Playwright element handle.
type pageElement struct {
	doc    *PageDocument
	handle playwright.ElementHandle
}

func (e *pageElement) ID() string {
	id, err := e.handle.GetAttribute("id")
	if err != nil {
		return ""
	}
	return id
}

func (e *pageElement) HasClass(name string) bool {
	class, err := e.handle.GetAttribute("class")
	if err != nil {
		return false
	}
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *pageElement) HasDescendantClass(name string) bool {
	child, err := e.handle.QuerySelector("." + name)
	return err == nil && child != nil
}

func (e *pageElement) Attached() bool {
	result, err := e.handle.Evaluate(`node => node.isConnected`)
	if err != nil {
		return false
	}
	connected, _ := result.(bool)
	return connected
}

func (e *pageElement) InlineHeight() string {
	result, err := e.handle.Evaluate(`node => node.style.height || ''`)
	if err != nil {
		return ""
	}
	height, _ := result.(string)
	return height
}

func (e *pageElement) SetInlineHeight(value string) error {
	_, err := e.handle.Evaluate(`(node, value) => { node.style.height = value; }`, value)
	if err != nil {
		return fmt.Errorf("setting inline height: %w", err)
	}
	return nil
}

// PageFrames schedules callbacks after the page's next render frame, posted
// back onto the loop.
type PageFrames struct {
	page   playwright.Page
	loop   *schedule.Loop
	logger *logging.Logger
}

// NewPageFrames creates a Frames implementation over the page.
func NewPageFrames(page playwright.Page, loop *schedule.Loop, logger *logging.Logger) *PageFrames {
	return &PageFrames{page: page, loop: loop, logger: logger}
}

// Request waits for the page's next animation frame, then posts f onto the
// loop. A failed wait still runs f so the pipeline never stalls on it.
func (f *PageFrames) Request(callback func()) {
	go func() {
		_, err := f.page.Evaluate(`() => new Promise(resolve => requestAnimationFrame(() => resolve(true)))`)
		if err != nil {
			f.logger.Warnf("animation frame wait failed: %v", err)
		}
		f.loop.Post(callback)
	}()
}
