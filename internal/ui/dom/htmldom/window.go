package htmldom

import "github.com/Its-donkey/eventpage/internal/ui/dom"

// Window is a scriptable viewport.
type Window struct {
	scrollY   float64
	listeners []listener
}

// NewWindow returns a Window scrolled to the top.
func NewWindow() *Window {
	return &Window{}
}

// ScrollY implements dom.Window.
func (w *Window) ScrollY() float64 { return w.scrollY }

// On implements dom.Window.
func (w *Window) On(event string, fn dom.Handler, opts dom.ListenerOptions) {
	w.listeners = append(w.listeners, listener{event: event, fn: fn, opts: opts})
}

// ScrollTo sets the vertical offset and fires "scroll" listeners.
func (w *Window) ScrollTo(y float64) {
	w.scrollY = y
	ev := &Event{}
	for _, l := range w.listeners {
		if l.event == "scroll" {
			ev.call(l)
		}
	}
}

// Listeners counts registered listeners for event.
func (w *Window) Listeners(event string) int {
	n := 0
	for _, l := range w.listeners {
		if l.event == event {
			n++
		}
	}
	return n
}
