package countdown

import (
	"fmt"
	"time"
)

// Parts is a remaining duration split into display units. Days are unbounded.
type Parts struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
	Centis  int64
}

// Decompose splits remaining (clamped to zero, truncated to whole
// milliseconds) into days, hours, minutes, seconds and centiseconds.
func Decompose(remaining time.Duration) Parts {
	return decomposeMillis(remaining.Milliseconds())
}

// decomposeMillis is Decompose over a raw millisecond count, which covers end
// times too far away for a time.Duration.
func decomposeMillis(ms int64) Parts {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	totalMinutes := totalSeconds / 60
	totalHours := totalMinutes / 60
	return Parts{
		Days:    totalHours / 24,
		Hours:   totalHours % 24,
		Minutes: totalMinutes % 60,
		Seconds: totalSeconds % 60,
		Centis:  (ms / 10) % 100,
	}
}

// Duration recomposes p. It is within 10ms below the decomposed input.
func (p Parts) Duration() time.Duration {
	return time.Duration(p.Days)*24*time.Hour +
		time.Duration(p.Hours)*time.Hour +
		time.Duration(p.Minutes)*time.Minute +
		time.Duration(p.Seconds)*time.Second +
		time.Duration(p.Centis)*10*time.Millisecond
}

// IsZero reports whether every unit is zero.
func (p Parts) IsZero() bool {
	return p == Parts{}
}

// Fields returns the display text for each slot in day, hour, minute,
// second, centisecond order.
func (p Parts) Fields() [5]string {
	return [5]string{pad(p.Days), pad(p.Hours), pad(p.Minutes), pad(p.Seconds), pad(p.Centis)}
}

// String formats p as DD:HH:MM:SS:CS.
func (p Parts) String() string {
	f := p.Fields()
	return f[0] + ":" + f[1] + ":" + f[2] + ":" + f[3] + ":" + f[4]
}

// pad zero-pads to two digits; wider values keep all their digits.
func pad(n int64) string {
	return fmt.Sprintf("%02d", n)
}
