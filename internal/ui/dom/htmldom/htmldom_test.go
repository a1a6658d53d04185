package htmldom

import (
	"strings"
	"testing"
	"time"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

const sample = `<!doctype html><html><body>
<div id="outer" class="box"><p class="inner"><a href="#" class="link">go</a></p></div>
<span id="lonely"></span>
</body></html>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestElementMutations(t *testing.T) {
	doc := mustParse(t, sample)
	outer, ok := doc.GetElementByID("outer")
	if !ok {
		t.Fatalf("expected #outer")
	}

	outer.AddClass("open")
	if !outer.HasClass("open") || !outer.HasClass("box") {
		t.Fatalf("expected both classes")
	}
	outer.RemoveClass("open")
	if outer.HasClass("open") {
		t.Fatalf("class should be removed")
	}

	outer.SetAttr("aria-hidden", "true")
	if v, ok := outer.Attr("aria-hidden"); !ok || v != "true" {
		t.Fatalf("unexpected attr %q %v", v, ok)
	}
	outer.RemoveAttr("aria-hidden")
	if _, ok := outer.Attr("aria-hidden"); ok {
		t.Fatalf("attr should be removed")
	}

	p, ok := outer.QuerySelector(".inner")
	if !ok {
		t.Fatalf("expected .inner")
	}
	p.SetText("replaced")
	if p.Text() != "replaced" {
		t.Fatalf("unexpected text %q", p.Text())
	}

	var out strings.Builder
	if err := doc.Render(&out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), `<p class="inner">replaced</p>`) {
		t.Fatalf("render missing mutation: %s", out.String())
	}
}

func TestStyleProperties(t *testing.T) {
	doc := mustParse(t, `<body style="color: red"></body>`)
	body, ok := doc.Body()
	if !ok {
		t.Fatalf("expected body")
	}
	el := body.(*Element)

	el.SetStyle("overflow", "hidden")
	if v, ok := el.Style("overflow"); !ok || v != "hidden" {
		t.Fatalf("expected overflow hidden, got %q", v)
	}
	if v, _ := el.Style("color"); v != "red" {
		t.Fatalf("existing style lost: %q", v)
	}
	el.RemoveStyle("overflow")
	if _, ok := el.Style("overflow"); ok {
		t.Fatalf("overflow should be removed")
	}
	if v, _ := el.Attr("style"); v != "color: red;" {
		t.Fatalf("unexpected style attr %q", v)
	}
}

func TestContainsAndEqual(t *testing.T) {
	doc := mustParse(t, sample)
	outer, _ := doc.GetElementByID("outer")
	link, _ := doc.QuerySelector(".link")
	lonely, _ := doc.GetElementByID("lonely")
	again, _ := doc.QuerySelector("#outer")

	if !outer.Contains(link) || !outer.Contains(outer) {
		t.Fatalf("outer should contain link and itself")
	}
	if outer.Contains(lonely) || link.Contains(outer) {
		t.Fatalf("unexpected containment")
	}
	if !outer.Equal(again) || outer.Equal(link) {
		t.Fatalf("equality should follow node identity")
	}
	if _, ok := doc.GetElementByID("missing"); ok {
		t.Fatalf("missing id should not resolve")
	}
}

func TestDispatchBubblesToAncestorsThenDocument(t *testing.T) {
	doc := mustParse(t, sample)
	outer, _ := doc.GetElementByID("outer")
	link, _ := doc.QuerySelector(".link")

	var order []string
	link.On("click", func(e dom.Event) { order = append(order, "link") }, dom.ListenerOptions{})
	outer.On("click", func(e dom.Event) {
		target, ok := e.Target()
		if !ok || !target.Equal(link) {
			t.Fatalf("target should be the link")
		}
		order = append(order, "outer")
		e.PreventDefault()
	}, dom.ListenerOptions{})
	doc.On("click", func(e dom.Event) { order = append(order, "document") }, dom.ListenerOptions{})

	if prevented := doc.Click(link); !prevented {
		t.Fatalf("expected default to be prevented")
	}
	if strings.Join(order, ",") != "link,outer,document" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestPassiveListenerCannotPreventDefault(t *testing.T) {
	doc := mustParse(t, sample)
	link, _ := doc.QuerySelector(".link")
	link.On("click", func(e dom.Event) { e.PreventDefault() }, dom.ListenerOptions{Passive: true})
	if doc.Click(link) {
		t.Fatalf("passive listener should not prevent default")
	}
}

func TestKeyDownReachesDocument(t *testing.T) {
	doc := mustParse(t, sample)
	var got string
	doc.On("keydown", func(e dom.Event) { got = e.Key() }, dom.ListenerOptions{})
	doc.KeyDown("Escape")
	if got != "Escape" {
		t.Fatalf("expected Escape, got %q", got)
	}
}

func TestClockOrdersTimers(t *testing.T) {
	clock := NewClock(time.Unix(0, 0))
	var fired []string

	stop := clock.Every(100*time.Millisecond, func() { fired = append(fired, "tick") })
	clock.After(120*time.Millisecond, func() { fired = append(fired, "pulse") })
	clock.After(50*time.Millisecond, func() {
		fired = append(fired, "early")
		clock.After(10*time.Millisecond, func() { fired = append(fired, "nested") })
	})

	clock.Advance(250 * time.Millisecond)
	want := "early,nested,tick,pulse,tick"
	if got := strings.Join(fired, ","); got != want {
		t.Fatalf("expected %s got %s", want, got)
	}
	if !clock.Now().Equal(time.Unix(0, 0).Add(250 * time.Millisecond)) {
		t.Fatalf("clock should land on the target time, got %v", clock.Now())
	}

	stop()
	stop()
	if clock.PendingTimers() != 0 {
		t.Fatalf("expected no pending timers, got %d", clock.PendingTimers())
	}
}

func TestClockFlushRunsQueuedFramesOnly(t *testing.T) {
	clock := NewClock(time.Unix(0, 0))
	runs := 0
	clock.NextFrame(func() {
		runs++
		clock.NextFrame(func() { runs++ })
	})
	if n := clock.Flush(); n != 1 || runs != 1 {
		t.Fatalf("expected one frame, got n=%d runs=%d", n, runs)
	}
	if clock.PendingFrames() != 1 {
		t.Fatalf("nested frame should wait for next flush")
	}
	clock.Flush()
	if runs != 2 {
		t.Fatalf("expected nested frame to run, runs=%d", runs)
	}
}

func TestWindowScrollFiresListeners(t *testing.T) {
	win := NewWindow()
	var seen []float64
	win.On("scroll", func(dom.Event) { seen = append(seen, win.ScrollY()) }, dom.ListenerOptions{Passive: true})
	win.ScrollTo(10)
	win.ScrollTo(60)
	if len(seen) != 2 || seen[1] != 60 {
		t.Fatalf("unexpected scroll samples %v", seen)
	}
	if win.Listeners("scroll") != 1 {
		t.Fatalf("expected one scroll listener")
	}
}
