// Package htmldom implements the dom interfaces over a parsed HTML tree.
//
// It backs the component unit tests and the server-side pre-render of the
// landing page. Events are dispatched synchronously in-process with the same
// bubbling order a browser uses (target, ancestors, then document).
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

type listener struct {
	event string
	fn    dom.Handler
	opts  dom.ListenerOptions
}

// Document is a mutable, event-capable HTML document.
type Document struct {
	doc       *goquery.Document
	listeners map[*html.Node][]listener
	global    []listener
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node][]listener),
	}, nil
}

// ParseString is Parse over a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// Selection exposes the underlying goquery document for read-only inspection.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{owner: d, node: n}
}

func (d *Document) first(sel *goquery.Selection) (dom.Element, bool) {
	if sel.Length() == 0 {
		return nil, false
	}
	return d.wrap(sel.Nodes[0]), true
}

func (d *Document) all(sel *goquery.Selection) []dom.Element {
	out := make([]dom.Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// QuerySelector implements dom.Document.
func (d *Document) QuerySelector(selector string) (dom.Element, bool) {
	return d.first(d.doc.Find(selector))
}

// QuerySelectorAll implements dom.Document.
func (d *Document) QuerySelectorAll(selector string) []dom.Element {
	return d.all(d.doc.Find(selector))
}

// GetElementByID implements dom.Document.
func (d *Document) GetElementByID(id string) (dom.Element, bool) {
	var found *html.Node
	d.doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr("id"); v == id {
			found = s.Nodes[0]
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return d.wrap(found), true
}

// Body implements dom.Document.
func (d *Document) Body() (dom.Element, bool) {
	return d.first(d.doc.Find("body"))
}

// On implements dom.Document.
func (d *Document) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	d.global = append(d.global, listener{event: event, fn: fn, opts: opts})
}

// Ready implements dom.Document. A parsed document is always complete.
func (d *Document) Ready(fn func()) {
	fn()
}

// Dispatch fires event at target, bubbling through its ancestors and then the
// document. It reports whether a non-passive listener called PreventDefault.
func (d *Document) Dispatch(target dom.Element, event string, key string) bool {
	ev := &Event{key: key}
	var path []*html.Node
	if el, ok := target.(*Element); ok && el != nil {
		ev.target = el
		for n := el.node; n != nil; n = n.Parent {
			if n.Type == html.ElementNode {
				path = append(path, n)
			}
		}
	}
	for _, n := range path {
		for _, l := range d.listeners[n] {
			if l.event == event {
				ev.call(l)
			}
		}
	}
	for _, l := range d.global {
		if l.event == event {
			ev.call(l)
		}
	}
	return ev.prevented
}

// Click dispatches a click on target.
func (d *Document) Click(target dom.Element) bool {
	return d.Dispatch(target, "click", "")
}

// KeyDown dispatches a keydown for key, targeted at the body when present.
func (d *Document) KeyDown(key string) bool {
	body, ok := d.Body()
	if !ok {
		return d.Dispatch(nil, "keydown", key)
	}
	return d.Dispatch(body, "keydown", key)
}

// Event is a synchronously dispatched event.
type Event struct {
	target    *Element
	key       string
	prevented bool
	passive   bool
}

func (e *Event) call(l listener) {
	e.passive = l.opts.Passive
	l.fn(e)
	e.passive = false
}

// Target implements dom.Event.
func (e *Event) Target() (dom.Element, bool) {
	if e.target == nil {
		return nil, false
	}
	return e.target, true
}

// Key implements dom.Event.
func (e *Event) Key() string { return e.key }

// PreventDefault implements dom.Event. Passive listeners cannot cancel.
func (e *Event) PreventDefault() {
	if !e.passive {
		e.prevented = true
	}
}
