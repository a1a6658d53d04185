// Package countdown renders live countdowns into `.counter` elements.
package countdown

import (
	"time"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
	"github.com/Its-donkey/eventpage/logging"
)

const (
	// DefaultInterval is the redraw cadence.
	DefaultInterval = 100 * time.Millisecond
	// DefaultPulse is how long the tick class stays on the text container.
	DefaultPulse = 120 * time.Millisecond
)

// SlotSelectors locate the value elements inside the text container, in
// Parts.Fields order.
var SlotSelectors = [5]string{
	".days .value",
	".hours .value",
	".minutes .value",
	".seconds .value",
	".centis .value",
}

// Options configures Initialize and Prerender. Zero fields take defaults.
type Options struct {
	CounterSelector string
	TextSelector    string
	PulseClass      string
	EndAttributes   []string
	Fallback        time.Time
	Interval        time.Duration
	Pulse           time.Duration
	Logger          *logging.Logger
}

// DefaultOptions returns the markup contract used by the landing page.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.CounterSelector == "" {
		o.CounterSelector = ".counter"
	}
	if o.TextSelector == "" {
		o.TextSelector = ".counter-text"
	}
	if o.PulseClass == "" {
		o.PulseClass = "tick"
	}
	if len(o.EndAttributes) == 0 {
		o.EndAttributes = EndAttributes
	}
	if o.Fallback.IsZero() {
		o.Fallback = DefaultEnd
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Pulse <= 0 {
		o.Pulse = DefaultPulse
	}
	return o
}

// Counter is one live countdown bound to a counter element.
type Counter struct {
	end    time.Time
	text   dom.Element
	slots  [5]dom.Element
	sched  dom.Scheduler
	opts   Options
	cancel dom.Cancel
	done   bool
}

// Initialize starts a countdown for every complete counter in doc and
// returns them. Incomplete counters are skipped.
func Initialize(doc dom.Document, sched dom.Scheduler, opts Options) []*Counter {
	opts = opts.withDefaults()
	var counters []*Counter
	for _, el := range doc.QuerySelectorAll(opts.CounterSelector) {
		c, ok := bind(el, opts)
		if !ok {
			continue
		}
		c.sched = sched
		c.start()
		counters = append(counters, c)
	}
	return counters
}

// Prerender writes the values for now into every complete counter in doc
// without scheduling updates. It returns the number of counters written.
func Prerender(doc dom.Document, now time.Time, opts Options) int {
	opts = opts.withDefaults()
	n := 0
	for _, el := range doc.QuerySelectorAll(opts.CounterSelector) {
		c, ok := bind(el, opts)
		if !ok {
			continue
		}
		c.render(c.partsAt(now))
		n++
	}
	return n
}

func bind(el dom.Element, opts Options) (*Counter, bool) {
	log := opts.Logger
	text, ok := el.QuerySelector(opts.TextSelector)
	if !ok {
		log.Debug("init", "counter skipped: no text container", map[string]any{"selector": opts.TextSelector})
		return nil, false
	}
	c := &Counter{text: text, opts: opts}
	for i, sel := range SlotSelectors {
		slot, ok := text.QuerySelector(sel)
		if !ok {
			log.Debug("init", "counter skipped: missing value slot", map[string]any{"selector": sel})
			return nil, false
		}
		c.slots[i] = slot
	}
	end, attr := ResolveEnd(el, opts.EndAttributes, opts.Fallback)
	if attr == "" {
		log.Debug("init", "counter uses fallback end time", map[string]any{"end": end.Format(time.RFC3339)})
	}
	c.end = end
	return c, true
}

// End returns the instant the counter runs down to.
func (c *Counter) End() time.Time { return c.end }

// Done reports whether the counter has reached zero and stopped.
func (c *Counter) Done() bool { return c.done }

func (c *Counter) start() {
	c.tick()
	if c.done {
		return
	}
	c.cancel = c.sched.Every(c.opts.Interval, c.tick)
}

// remainingMillis works on whole epoch milliseconds. It stays in int64 ms
// because a time.Duration overflows for ends about 292 years away.
func (c *Counter) remainingMillis(now time.Time) int64 {
	return c.end.UnixMilli() - now.UnixMilli()
}

func (c *Counter) partsAt(now time.Time) Parts {
	return decomposeMillis(c.remainingMillis(now))
}

func (c *Counter) tick() {
	if c.done {
		return
	}
	remaining := c.remainingMillis(c.sched.Now())
	if remaining <= 0 {
		c.render(Parts{})
		c.stop()
		return
	}
	c.render(decomposeMillis(remaining))

	// Pulses from consecutive ticks overlap; removal is idempotent.
	c.text.AddClass(c.opts.PulseClass)
	c.sched.After(c.opts.Pulse, func() {
		c.text.RemoveClass(c.opts.PulseClass)
	})
}

func (c *Counter) render(p Parts) {
	for i, v := range p.Fields() {
		c.slots[i].SetText(v)
	}
}

func (c *Counter) stop() {
	c.done = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.opts.Logger.Debug("tick", "countdown reached zero", map[string]any{"end": c.end.Format(time.RFC3339)})
}
