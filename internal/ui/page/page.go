// Package page wires the landing page components onto a document.
package page

import (
	"github.com/Its-donkey/eventpage/internal/ui/countdown"
	"github.com/Its-donkey/eventpage/internal/ui/dom"
	"github.com/Its-donkey/eventpage/internal/ui/navscroll"
	"github.com/Its-donkey/eventpage/internal/ui/popup"
	"github.com/Its-donkey/eventpage/logging"
)

// Page holds the initialized components. Nil or empty fields mean the markup
// for that component was absent.
type Page struct {
	Counters []*countdown.Counter
	Navbar   *navscroll.Toggler
	Popup    *popup.Controller
}

// Initialize runs each component's Initialize exactly once, after doc is ready.
// The returned channel receives the page when initialization has happened.
func Initialize(doc dom.Document, win dom.Window, sched dom.Scheduler, logger *logging.Logger) <-chan *Page {
	ready := make(chan *Page, 1)
	doc.Ready(func() {
		p := &Page{
			Counters: countdown.Initialize(doc, sched, countdown.Options{Logger: logger.Named("countdown")}),
			Navbar:   navscroll.Initialize(doc, win, navscroll.Options{Logger: logger.Named("navscroll")}),
			Popup:    popup.Initialize(doc, sched, popup.Options{Logger: logger.Named("popup")}),
		}
		logger.Info("init", "page components ready", map[string]any{
			"counters": len(p.Counters),
			"navbar":   p.Navbar != nil,
			"popup":    p.Popup != nil,
		})
		ready <- p
	})
	return ready
}
