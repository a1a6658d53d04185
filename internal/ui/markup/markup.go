// Package markup checks an HTML document against the markup the page
// components bind to.
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Its-donkey/eventpage/internal/ui/countdown"
	"github.com/Its-donkey/eventpage/internal/ui/popup"
)

// Severity ranks a finding.
type Severity int

const (
	// Warning marks markup that works but degrades silently at runtime.
	Warning Severity = iota
	// Error marks markup a component cannot bind to at all.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Finding is a single contract violation.
type Finding struct {
	Severity  Severity
	Component string
	Message   string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Component, f.Message)
}

// Report lists every finding for one document.
type Report struct {
	Findings []Finding
	Counters int
	Steps    int
}

// Errors returns the error findings.
func (r Report) Errors() []Finding { return r.filter(Error) }

// Warnings returns the warning findings.
func (r Report) Warnings() []Finding { return r.filter(Warning) }

// OK reports whether there are no errors. Warnings are allowed.
func (r Report) OK() bool { return len(r.Errors()) == 0 }

func (r Report) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) add(s Severity, component, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Severity: s, Component: component, Message: fmt.Sprintf(format, args...)})
}

// Check parses r and validates the countdown, navbar and popup markup.
func Check(r io.Reader) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("parse html: %w", err)
	}
	var rep Report
	checkCounters(doc, &rep)
	checkNavbar(doc, &rep)
	checkPopup(doc, &rep)
	return rep, nil
}

func describe(s *goquery.Selection, i int) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		return "#" + id
	}
	return fmt.Sprintf("counter %d", i+1)
}

func checkCounters(doc *goquery.Document, rep *Report) {
	opts := countdown.DefaultOptions()
	counters := doc.Find(opts.CounterSelector)
	if counters.Length() == 0 {
		rep.add(Warning, "countdown", "no %s element", opts.CounterSelector)
		return
	}
	counters.Each(func(i int, counter *goquery.Selection) {
		name := describe(counter, i)
		text := counter.Find(opts.TextSelector).First()
		if text.Length() == 0 {
			rep.add(Error, "countdown", "%s has no %s container", name, opts.TextSelector)
			return
		}
		complete := true
		for _, sel := range countdown.SlotSelectors {
			if text.Find(sel).Length() == 0 {
				rep.add(Error, "countdown", "%s is missing %s", name, sel)
				complete = false
			}
		}
		if complete {
			rep.Counters++
		}

		found := false
		for _, attr := range opts.EndAttributes {
			raw, ok := counter.Attr(attr)
			if !ok {
				continue
			}
			if _, ok := countdown.ParseEnd(raw); ok {
				found = true
				break
			}
			rep.add(Warning, "countdown", "%s %s=%q does not parse", name, attr, raw)
		}
		if !found {
			rep.add(Warning, "countdown", "%s has no usable end time, fallback %s will be used",
				name, opts.Fallback.Format("2006-01-02T15:04:05Z07:00"))
		}
	})
}

func checkNavbar(doc *goquery.Document, rep *Report) {
	switch n := doc.Find(".navbar").Length(); {
	case n == 0:
		rep.add(Error, "navscroll", "no .navbar element")
	case n > 1:
		rep.add(Warning, "navscroll", "%d .navbar elements, only the first is toggled", n)
	}
}

func checkPopup(doc *goquery.Document, rep *Report) {
	overlay := doc.Find("#popupOverlay")
	if overlay.Length() == 0 {
		rep.add(Error, "popup", "no #popupOverlay element")
		return
	}

	var steps []*goquery.Selection
	var missing []string
	for n := 1; n <= popup.MaxSteps; n++ {
		step := doc.Find(fmt.Sprintf(`[data-popup-step="%d"]`, n)).First()
		if step.Length() == 0 {
			missing = append(missing, fmt.Sprint(n))
			continue
		}
		steps = append(steps, step)
	}
	rep.Steps = len(steps)
	if len(missing) > 0 {
		rep.add(Warning, "popup", "missing step panels %s", strings.Join(missing, ", "))
	}

	stray := 0
	doc.Find(".next-button, .previous-button").Each(func(_ int, ctl *goquery.Selection) {
		for _, step := range steps {
			if step.Contains(ctl.Nodes[0]) {
				return
			}
		}
		stray++
	})
	if stray > 0 {
		rep.add(Warning, "popup", "%d next/previous controls sit outside every step and are ignored", stray)
	}

	if doc.Find(".join-button").Length() == 0 {
		rep.add(Warning, "popup", "no .join-button, the popup cannot be opened")
	}
}
