package htmldom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

// Element wraps a single element node of a Document.
type Element struct {
	owner *Document
	node  *html.Node
}

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// AddClass implements dom.Element.
func (e *Element) AddClass(name string) { e.sel().AddClass(name) }

// RemoveClass implements dom.Element.
func (e *Element) RemoveClass(name string) { e.sel().RemoveClass(name) }

// HasClass implements dom.Element.
func (e *Element) HasClass(name string) bool { return e.sel().HasClass(name) }

// Attr implements dom.Element.
func (e *Element) Attr(name string) (string, bool) { return e.sel().Attr(name) }

// SetAttr implements dom.Element.
func (e *Element) SetAttr(name, value string) { e.sel().SetAttr(name, value) }

// RemoveAttr implements dom.Element.
func (e *Element) RemoveAttr(name string) { e.sel().RemoveAttr(name) }

// Text implements dom.Element.
func (e *Element) Text() string { return e.sel().Text() }

// SetText implements dom.Element.
func (e *Element) SetText(text string) { e.sel().SetText(text) }

// Style returns the inline value of property, if set.
func (e *Element) Style(property string) (string, bool) {
	for _, decl := range parseStyle(e.attr("style")) {
		if decl.name == property {
			return decl.value, true
		}
	}
	return "", false
}

// SetStyle implements dom.Element.
func (e *Element) SetStyle(property, value string) {
	decls := parseStyle(e.attr("style"))
	replaced := false
	for i := range decls {
		if decls[i].name == property {
			decls[i].value = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, styleDecl{name: property, value: value})
	}
	e.SetAttr("style", formatStyle(decls))
}

// RemoveStyle implements dom.Element.
func (e *Element) RemoveStyle(property string) {
	current, ok := e.Attr("style")
	if !ok {
		return
	}
	decls := parseStyle(current)
	kept := decls[:0]
	for _, d := range decls {
		if d.name != property {
			kept = append(kept, d)
		}
	}
	e.SetAttr("style", formatStyle(kept))
}

// QuerySelector implements dom.Element.
func (e *Element) QuerySelector(selector string) (dom.Element, bool) {
	return e.owner.first(e.sel().Find(selector))
}

// QuerySelectorAll implements dom.Element.
func (e *Element) QuerySelectorAll(selector string) []dom.Element {
	return e.owner.all(e.sel().Find(selector))
}

// Contains implements dom.Element.
func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	for n := o.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Equal implements dom.Element.
func (e *Element) Equal(other dom.Element) bool {
	o, ok := other.(*Element)
	return ok && o != nil && o.node == e.node
}

// On implements dom.Element.
func (e *Element) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	e.owner.listeners[e.node] = append(e.owner.listeners[e.node], listener{event: event, fn: fn, opts: opts})
}

func (e *Element) attr(name string) string {
	v, _ := e.Attr(name)
	return v
}

type styleDecl struct {
	name  string
	value string
}

func parseStyle(style string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		decls = append(decls, styleDecl{name: name, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.name+": "+d.value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}
