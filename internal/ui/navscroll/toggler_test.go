package navscroll

import (
	"testing"

	"github.com/Its-donkey/eventpage/internal/ui/dom/htmldom"
)

const page = `<html><body><nav class="navbar is-scrolled"><a href="#">home</a></nav><main></main></body></html>`

func setup(t *testing.T, markup string) (*htmldom.Document, *htmldom.Window) {
	t.Helper()
	doc, err := htmldom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc, htmldom.NewWindow()
}

func TestScrolled(t *testing.T) {
	cases := []struct {
		offset float64
		want   bool
	}{
		{0, false},
		{0.5, false},
		{10, false},
		{49.9, false},
		{50, true},
		{51, true},
		{5000, true},
	}
	for _, tc := range cases {
		if got := Scrolled(tc.offset, DefaultThreshold); got != tc.want {
			t.Fatalf("Scrolled(%v): expected %v, got %v", tc.offset, tc.want, got)
		}
	}
}

func TestZeroThresholdStillIgnoresTop(t *testing.T) {
	if Scrolled(0, 0) {
		t.Fatalf("offset 0 must never count as scrolled")
	}
}

func TestInitializeClearsStaleClass(t *testing.T) {
	doc, win := setup(t, page)
	tog := Initialize(doc, win, Options{})
	if tog == nil {
		t.Fatalf("expected toggler")
	}
	if tog.Active() {
		t.Fatalf("class should be removed at the top of the page")
	}
	if win.Listeners("scroll") != 1 {
		t.Fatalf("expected one scroll listener, got %d", win.Listeners("scroll"))
	}
}

func TestInitializeAppliesCurrentOffset(t *testing.T) {
	doc, win := setup(t, page)
	win.ScrollTo(300)
	if tog := Initialize(doc, win, Options{}); !tog.Active() {
		t.Fatalf("expected class for a page already scrolled on load")
	}
}

func TestScrollSequence(t *testing.T) {
	doc, win := setup(t, page)
	tog := Initialize(doc, win, Options{})
	nav, _ := doc.QuerySelector(".navbar")

	offsets := []float64{0, 10, 50, 49, 0}
	want := []bool{false, false, true, false, false}
	for i, y := range offsets {
		win.ScrollTo(y)
		if got := nav.HasClass("is-scrolled"); got != want[i] || tog.Active() != got {
			t.Fatalf("offset %v: expected %v, got %v", y, want[i], got)
		}
	}
}

func TestCustomThresholdAndClass(t *testing.T) {
	doc, win := setup(t, `<html><body><header class="top"></header></body></html>`)
	Initialize(doc, win, Options{Selector: ".top", Class: "shadow", Threshold: 120})
	top, _ := doc.QuerySelector(".top")

	win.ScrollTo(119)
	if top.HasClass("shadow") {
		t.Fatalf("below threshold")
	}
	win.ScrollTo(120)
	if !top.HasClass("shadow") {
		t.Fatalf("at threshold")
	}
}

func TestMissingHeaderInstallsNothing(t *testing.T) {
	doc, win := setup(t, `<html><body><main></main></body></html>`)
	if tog := Initialize(doc, win, Options{}); tog != nil {
		t.Fatalf("expected nil toggler")
	}
	if win.Listeners("scroll") != 0 {
		t.Fatalf("expected no listeners")
	}
	win.ScrollTo(100)
}
