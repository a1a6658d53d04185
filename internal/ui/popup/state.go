package popup

import "strconv"

// State is the popup's position in its step sequence. The zero value is Closed.
type State struct {
	open bool
	step int
}

// Closed is the state with the overlay hidden and no step active.
func Closed() State { return State{} }

// ShowingStep is the state with the overlay open on step i (0-based).
func ShowingStep(i int) State { return State{open: true, step: i} }

// Open reports whether the overlay is shown.
func (s State) Open() bool { return s.open }

// Step returns the active step index; ok is false when closed.
func (s State) Step() (int, bool) {
	if !s.open {
		return 0, false
	}
	return s.step, true
}

func (s State) String() string {
	if !s.open {
		return "Closed"
	}
	return "ShowingStep(" + strconv.Itoa(s.step) + ")"
}
