//go:build js && wasm

// Package jsdom binds the dom interfaces to the browser through syscall/js.
package jsdom

import (
	"syscall/js"
	"time"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

// funcs keeps every listener alive for the page lifetime. Timer callbacks are
// released as soon as they can no longer fire.
var funcs []js.Func

func retain(fn js.Func) js.Func {
	funcs = append(funcs, fn)
	return fn
}

// Global returns the bound document, window and scheduler.
func Global() (*Document, *Window, *Scheduler) {
	window := js.Global()
	return &Document{v: window.Get("document")}, &Window{v: window}, &Scheduler{window: window}
}

func addListener(target js.Value, event string, fn dom.Handler, opts dom.ListenerOptions) {
	cb := retain(js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(&Event{v: args[0]})
		}
		return nil
	}))
	target.Call("addEventListener", event, cb, map[string]any{"passive": opts.Passive})
}

// query swallows selector syntax errors so a bad selector reads as "not found".
func query(root js.Value, selector string) (v js.Value) {
	defer func() {
		if recover() != nil {
			v = js.Null()
		}
	}()
	return root.Call("querySelector", selector)
}

func queryAll(root js.Value, selector string) (out []dom.Element) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	list := root.Call("querySelectorAll", selector)
	length := list.Get("length").Int()
	out = make([]dom.Element, 0, length)
	for i := 0; i < length; i++ {
		out = append(out, &Element{v: list.Call("item", i)})
	}
	return out
}

func wrap(v js.Value) (dom.Element, bool) {
	if !v.Truthy() {
		return nil, false
	}
	return &Element{v: v}, true
}

// Document wraps window.document.
type Document struct {
	v js.Value
}

// QuerySelector implements dom.Document.
func (d *Document) QuerySelector(selector string) (dom.Element, bool) {
	return wrap(query(d.v, selector))
}

// QuerySelectorAll implements dom.Document.
func (d *Document) QuerySelectorAll(selector string) []dom.Element {
	return queryAll(d.v, selector)
}

// GetElementByID implements dom.Document.
func (d *Document) GetElementByID(id string) (dom.Element, bool) {
	return wrap(d.v.Call("getElementById", id))
}

// Body implements dom.Document.
func (d *Document) Body() (dom.Element, bool) {
	return wrap(d.v.Get("body"))
}

// On implements dom.Document.
func (d *Document) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	addListener(d.v, event, fn, opts)
}

// Ready implements dom.Document.
func (d *Document) Ready(fn func()) {
	if d.v.Get("readyState").String() != "loading" {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	d.v.Call("addEventListener", "DOMContentLoaded", cb, map[string]any{"once": true})
}

// Element wraps a DOM element.
type Element struct {
	v js.Value
}

// AddClass implements dom.Element.
func (e *Element) AddClass(name string) { e.v.Get("classList").Call("add", name) }

// RemoveClass implements dom.Element.
func (e *Element) RemoveClass(name string) { e.v.Get("classList").Call("remove", name) }

// HasClass implements dom.Element.
func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

// Attr implements dom.Element.
func (e *Element) Attr(name string) (string, bool) {
	v := e.v.Call("getAttribute", name)
	if v.Type() != js.TypeString {
		return "", false
	}
	return v.String(), true
}

// SetAttr implements dom.Element.
func (e *Element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

// RemoveAttr implements dom.Element.
func (e *Element) RemoveAttr(name string) { e.v.Call("removeAttribute", name) }

// Text implements dom.Element.
func (e *Element) Text() string { return e.v.Get("textContent").String() }

// SetText implements dom.Element.
func (e *Element) SetText(text string) { e.v.Set("textContent", text) }

// SetStyle implements dom.Element.
func (e *Element) SetStyle(property, value string) {
	e.v.Get("style").Call("setProperty", property, value)
}

// RemoveStyle implements dom.Element.
func (e *Element) RemoveStyle(property string) {
	e.v.Get("style").Call("removeProperty", property)
}

// QuerySelector implements dom.Element.
func (e *Element) QuerySelector(selector string) (dom.Element, bool) {
	return wrap(query(e.v, selector))
}

// QuerySelectorAll implements dom.Element.
func (e *Element) QuerySelectorAll(selector string) []dom.Element {
	return queryAll(e.v, selector)
}

// Contains implements dom.Element.
func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	return ok && o != nil && e.v.Call("contains", o.v).Bool()
}

// Equal implements dom.Element.
func (e *Element) Equal(other dom.Element) bool {
	o, ok := other.(*Element)
	return ok && o != nil && e.v.Equal(o.v)
}

// On implements dom.Element.
func (e *Element) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	addListener(e.v, event, fn, opts)
}

// Window wraps the global window.
type Window struct {
	v js.Value
}

// ScrollY implements dom.Window.
func (w *Window) ScrollY() float64 {
	if y := w.v.Get("scrollY"); y.Type() == js.TypeNumber {
		return y.Float()
	}
	if y := w.v.Get("pageYOffset"); y.Type() == js.TypeNumber {
		return y.Float()
	}
	return 0
}

// On implements dom.Window.
func (w *Window) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	addListener(w.v, event, fn, opts)
}

// Event wraps a DOM Event.
type Event struct {
	v js.Value
}

// Target implements dom.Event.
func (e *Event) Target() (dom.Element, bool) {
	t := e.v.Get("target")
	if !t.Truthy() {
		return nil, false
	}
	// Only element nodes (nodeType 1) are exposed.
	if nt := t.Get("nodeType"); nt.Type() != js.TypeNumber || nt.Int() != 1 {
		return nil, false
	}
	return &Element{v: t}, true
}

// Key implements dom.Event.
func (e *Event) Key() string {
	k := e.v.Get("key")
	if k.Type() != js.TypeString {
		return ""
	}
	return k.String()
}

// PreventDefault implements dom.Event.
func (e *Event) PreventDefault() { e.v.Call("preventDefault") }

// Scheduler drives callbacks from the browser's timers.
type Scheduler struct {
	window js.Value
}

// Now implements dom.Scheduler.
func (s *Scheduler) Now() time.Time { return time.Now() }

// Every implements dom.Scheduler.
func (s *Scheduler) Every(d time.Duration, fn func()) dom.Cancel {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	id := s.window.Call("setInterval", cb, d.Milliseconds())
	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		s.window.Call("clearInterval", id)
		cb.Release()
	}
}

// After implements dom.Scheduler.
func (s *Scheduler) After(d time.Duration, fn func()) dom.Cancel {
	done := false
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		done = true
		cb.Release()
		fn()
		return nil
	})
	id := s.window.Call("setTimeout", cb, d.Milliseconds())
	return func() {
		if done {
			return
		}
		done = true
		s.window.Call("clearTimeout", id)
		cb.Release()
	}
}

// NextFrame implements dom.Scheduler.
func (s *Scheduler) NextFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	s.window.Call("requestAnimationFrame", cb)
}
