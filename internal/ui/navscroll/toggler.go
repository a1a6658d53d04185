// Package navscroll marks the navigation bar once the page has scrolled.
package navscroll

import (
	"github.com/Its-donkey/eventpage/internal/ui/dom"
	"github.com/Its-donkey/eventpage/logging"
)

// DefaultThreshold is the scroll offset, in CSS pixels, at which the class is applied.
const DefaultThreshold = 50

// Options configures Initialize. Zero fields take defaults.
type Options struct {
	Selector  string
	Class     string
	Threshold float64
	Logger    *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.Selector == "" {
		o.Selector = ".navbar"
	}
	if o.Class == "" {
		o.Class = "is-scrolled"
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Scrolled reports whether offset has reached threshold. The top of the page
// is never scrolled.
func Scrolled(offset, threshold float64) bool {
	if offset == 0 {
		return false
	}
	return offset >= threshold
}

// Toggler keeps the scrolled class in sync with the window offset.
type Toggler struct {
	header dom.Element
	win    dom.Window
	opts   Options
}

// Initialize binds the first element matching the header selector. It returns
// nil and installs nothing when there is no header.
func Initialize(doc dom.Document, win dom.Window, opts Options) *Toggler {
	opts = opts.withDefaults()
	header, ok := doc.QuerySelector(opts.Selector)
	if !ok {
		opts.Logger.Debug("init", "scroll toggler skipped: no header", map[string]any{"selector": opts.Selector})
		return nil
	}
	t := &Toggler{header: header, win: win, opts: opts}
	header.RemoveClass(opts.Class)
	win.On("scroll", func(dom.Event) { t.Update() }, dom.ListenerOptions{Passive: true})
	t.Update()
	return t
}

// Update applies the class for the current offset.
func (t *Toggler) Update() {
	if Scrolled(t.win.ScrollY(), t.opts.Threshold) {
		t.header.AddClass(t.opts.Class)
		return
	}
	t.header.RemoveClass(t.opts.Class)
}

// Active reports whether the header currently carries the class.
func (t *Toggler) Active() bool {
	return t.header.HasClass(t.opts.Class)
}
