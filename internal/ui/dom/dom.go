// Package dom defines the slice of the browser document model the page
// components need. The WASM build binds it to syscall/js (package jsdom);
// tests and server-side rendering bind it to parsed HTML (package htmldom).
package dom

import "time"

// Handler receives a dispatched event.
type Handler func(Event)

// ListenerOptions mirrors the addEventListener options the components use.
type ListenerOptions struct {
	Passive bool
}

// Event is a dispatched DOM event.
type Event interface {
	// Target is the element the event was dispatched to. ok is false when the
	// target is not an element (window, document).
	Target() (Element, bool)
	// Key is the KeyboardEvent key, empty for non-keyboard events.
	Key() string
	PreventDefault()
}

// Element is a single DOM element.
type Element interface {
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	Text() string
	SetText(text string)

	SetStyle(property, value string)
	RemoveStyle(property string)

	// QuerySelector returns the first descendant matching selector.
	QuerySelector(selector string) (Element, bool)
	QuerySelectorAll(selector string) []Element

	// Contains reports whether other is this element or one of its descendants.
	Contains(other Element) bool
	// Equal reports whether both values refer to the same node.
	Equal(other Element) bool

	On(event string, fn Handler, opts ListenerOptions)
}

// Document is the page document.
type Document interface {
	QuerySelector(selector string) (Element, bool)
	QuerySelectorAll(selector string) []Element
	GetElementByID(id string) (Element, bool)
	Body() (Element, bool)
	On(event string, fn Handler, opts ListenerOptions)
	// Ready runs fn once the document has finished parsing, immediately if it
	// already has.
	Ready(fn func())
}

// Window exposes the viewport state the components read.
type Window interface {
	ScrollY() float64
	On(event string, fn Handler, opts ListenerOptions)
}

// Cancel stops a scheduled callback. Calling it more than once is a no-op.
type Cancel func()

// Scheduler is the page clock and timer facility.
type Scheduler interface {
	Now() time.Time
	// Every runs fn every d until cancelled (setInterval).
	Every(d time.Duration, fn func()) Cancel
	// After runs fn once after d (setTimeout).
	After(d time.Duration, fn func()) Cancel
	// NextFrame runs fn before the next repaint (requestAnimationFrame).
	NextFrame(fn func())
}
