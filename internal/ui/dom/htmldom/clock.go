package htmldom

import (
	"time"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

// Clock is a deterministic dom.Scheduler. Time only moves through Advance and
// animation frames only run through Flush.
type Clock struct {
	now    time.Time
	seq    int
	timers []*timer
	frames []func()
}

type timer struct {
	seq       int
	due       time.Time
	period    time.Duration
	fn        func()
	cancelled bool
}

// NewClock returns a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now implements dom.Scheduler.
func (c *Clock) Now() time.Time { return c.now }

// Every implements dom.Scheduler.
func (c *Clock) Every(d time.Duration, fn func()) dom.Cancel {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return c.add(d, d, fn)
}

// After implements dom.Scheduler.
func (c *Clock) After(d time.Duration, fn func()) dom.Cancel {
	if d < 0 {
		d = 0
	}
	return c.add(d, 0, fn)
}

// NextFrame implements dom.Scheduler.
func (c *Clock) NextFrame(fn func()) {
	c.frames = append(c.frames, fn)
}

func (c *Clock) add(delay, period time.Duration, fn func()) dom.Cancel {
	c.seq++
	t := &timer{seq: c.seq, due: c.now.Add(delay), period: period, fn: fn}
	c.timers = append(c.timers, t)
	return func() { t.cancelled = true }
}

// Advance moves the clock forward by d, firing due timers in order. Timers
// scheduled by a callback fire in the same call if they fall due within d.
func (c *Clock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		c.now = t.due
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			t.cancelled = true
		}
		t.fn()
	}
	c.now = target
	c.prune()
}

// Flush runs the animation-frame callbacks queued so far and returns how many
// ran. Frames requested while flushing wait for the next Flush.
func (c *Clock) Flush() int {
	frames := c.frames
	c.frames = nil
	for _, fn := range frames {
		fn()
	}
	return len(frames)
}

// PendingTimers counts timers that have not fired or been cancelled.
func (c *Clock) PendingTimers() int {
	c.prune()
	return len(c.timers)
}

// PendingFrames counts queued animation-frame callbacks.
func (c *Clock) PendingFrames() int { return len(c.frames) }

func (c *Clock) nextDue(limit time.Time) *timer {
	var best *timer
	for _, t := range c.timers {
		if t.cancelled || t.due.After(limit) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *Clock) prune() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	c.timers = live
}
