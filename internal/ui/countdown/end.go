package countdown

import (
	"strings"
	"time"

	"github.com/Its-donkey/eventpage/internal/ui/dom"
)

// DefaultEnd is used when a counter carries no usable end time:
// 25 Feb 2026 10:00 at UTC+11.
var DefaultEnd = time.Date(2026, time.February, 25, 10, 0, 0, 0, time.FixedZone("UTC+11", 11*60*60))

// EndAttributes are checked in order on a counter element.
var EndAttributes = []string{"data-end", "data-target", "data-countdown"}

// Layouts with an explicit zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
}

// Date-time layouts without a zone are local time; a bare date is UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseEnd parses an end-time attribute value.
func ParseEnd(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ResolveEnd returns the first present and parseable end attribute of el,
// or fallback. The second result names the attribute used, empty for the
// fallback.
func ResolveEnd(el dom.Element, attrs []string, fallback time.Time) (time.Time, string) {
	for _, name := range attrs {
		raw, ok := el.Attr(name)
		if !ok {
			continue
		}
		if t, ok := ParseEnd(raw); ok {
			return t, name
		}
	}
	return fallback, ""
}
