// Package popup drives the multi-step join popup.
//
// The controller holds an explicit State and every DOM change is a
// projection of it. Opening the overlay happens immediately; marking the
// active step waits for the next animation frame so the overlay transition
// starts first. The frame callback renders whatever state is current when it
// runs, so a close or another show issued in between always wins.
package popup

import (
	"strconv"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
	"github.com/Its-donkey/eventpage/logging"
)

// MaxSteps is the number of step panels looked up.
const MaxSteps = 4

// Options configures Initialize. Zero fields take defaults.
type Options struct {
	OverlayID        string
	StepAttr         string
	NextSelector     string
	PreviousSelector string
	JoinSelector     string
	OpenClass        string
	ActiveClass      string
	Logger           *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.OverlayID == "" {
		o.OverlayID = "popupOverlay"
	}
	if o.StepAttr == "" {
		o.StepAttr = "data-popup-step"
	}
	if o.NextSelector == "" {
		o.NextSelector = ".next-button"
	}
	if o.PreviousSelector == "" {
		o.PreviousSelector = ".previous-button"
	}
	if o.JoinSelector == "" {
		o.JoinSelector = ".join-button"
	}
	if o.OpenClass == "" {
		o.OpenClass = "open"
	}
	if o.ActiveClass == "" {
		o.ActiveClass = "active"
	}
	return o
}

type direction int

const (
	forward direction = iota
	backward
)

// control is a next or previous button bound to the step that owns it.
type control struct {
	el   dom.Element
	step int
	dir  direction
}

// Controller owns the popup state.
type Controller struct {
	overlay  dom.Element
	body     dom.Element
	steps    []dom.Element
	controls []control
	sched    dom.Scheduler
	opts     Options
	log      *logging.Logger

	state        State
	framePending bool
}

// Initialize binds the popup markup in doc. It returns nil and installs
// nothing when the overlay is missing.
func Initialize(doc dom.Document, sched dom.Scheduler, opts Options) *Controller {
	opts = opts.withDefaults()
	overlay, ok := doc.GetElementByID(opts.OverlayID)
	if !ok {
		opts.Logger.Debug("init", "popup skipped: no overlay", map[string]any{"id": opts.OverlayID})
		return nil
	}
	c := &Controller{overlay: overlay, sched: sched, opts: opts, log: opts.Logger}
	c.body, _ = doc.Body()

	for n := 1; n <= MaxSteps; n++ {
		sel := "[" + opts.StepAttr + `="` + strconv.Itoa(n) + `"]`
		if step, ok := doc.QuerySelector(sel); ok {
			c.steps = append(c.steps, step)
		}
	}
	for i, step := range c.steps {
		c.bindControls(step, i, opts.NextSelector, forward)
		c.bindControls(step, i, opts.PreviousSelector, backward)
	}
	for _, ctl := range c.controls {
		ctl := ctl
		ctl.el.On("click", func(dom.Event) { c.activate(ctl) }, dom.ListenerOptions{})
	}

	for _, join := range doc.QuerySelectorAll(opts.JoinSelector) {
		join.On("click", func(ev dom.Event) {
			ev.PreventDefault()
			c.Show(0)
		}, dom.ListenerOptions{})
	}

	overlay.On("click", func(ev dom.Event) {
		if target, ok := ev.Target(); ok && target.Equal(c.overlay) {
			c.Close()
		}
	}, dom.ListenerOptions{})

	doc.On("keydown", func(ev dom.Event) {
		switch ev.Key() {
		case "Escape", "Esc":
			c.Close()
		}
	}, dom.ListenerOptions{})

	c.project()
	c.log.Debug("init", "popup ready", map[string]any{"steps": len(c.steps), "controls": len(c.controls)})
	return c
}

// bindControls records every control under step that no earlier step owns.
func (c *Controller) bindControls(step dom.Element, index int, selector string, dir direction) {
	for _, el := range step.QuerySelectorAll(selector) {
		if _, owned := c.Owner(el); owned {
			continue
		}
		c.controls = append(c.controls, control{el: el, step: index, dir: dir})
	}
}

// Owner returns the step index a next or previous control belongs to.
func (c *Controller) Owner(el dom.Element) (int, bool) {
	for _, ctl := range c.controls {
		if ctl.el.Equal(el) {
			return ctl.step, true
		}
	}
	return 0, false
}

func (c *Controller) activate(ctl control) {
	if ctl.dir == forward {
		c.Next(ctl.step)
		return
	}
	c.Previous(ctl.step)
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Steps returns the number of step panels found.
func (c *Controller) Steps() int { return len(c.steps) }

// Show opens the popup on step i. Out of range indexes are ignored.
func (c *Controller) Show(i int) {
	if i < 0 || i >= len(c.steps) {
		return
	}
	c.transition(ShowingStep(i))
}

// Next advances from step i, closing after the last step.
func (c *Controller) Next(i int) {
	if i+1 >= len(c.steps) {
		c.Close()
		return
	}
	c.Show(i + 1)
}

// Previous goes back from step i. Nothing happens on the first step.
func (c *Controller) Previous(i int) {
	c.Show(i - 1)
}

// Close hides the popup. It is a no-op when already closed.
func (c *Controller) Close() {
	if !c.state.Open() {
		return
	}
	c.transition(Closed())
}

func (c *Controller) transition(next State) {
	c.log.Debug("state", "popup transition", map[string]any{"from": c.state.String(), "to": next.String()})
	c.state = next
	c.project()
}

// project applies the overlay half of the state now and schedules the step
// half for the next frame when open.
func (c *Controller) project() {
	if !c.state.Open() {
		c.renderSteps()
		c.overlay.RemoveClass(c.opts.OpenClass)
		c.overlay.SetAttr("aria-hidden", "true")
		if c.body != nil {
			c.body.RemoveStyle("overflow")
		}
		return
	}
	c.overlay.AddClass(c.opts.OpenClass)
	c.overlay.SetAttr("aria-hidden", "false")
	if c.body != nil {
		c.body.SetStyle("overflow", "hidden")
	}
	if c.framePending {
		return
	}
	c.framePending = true
	c.sched.NextFrame(func() {
		c.framePending = false
		c.renderSteps()
	})
}

func (c *Controller) renderSteps() {
	active, open := c.state.Step()
	for i, step := range c.steps {
		if open && i == active {
			step.AddClass(c.opts.ActiveClass)
			continue
		}
		step.RemoveClass(c.opts.ActiveClass)
	}
}
