package interp

import "fmt"

// Mode selects a fractional-delay interpolation algorithm.
type Mode int

const (
	// None returns the integer-indexed sample.
	None Mode = iota
	// Linear blends the two neighbouring samples.
	Linear
	// Allpass runs a one-pole allpass interpolator with persistent state.
	Allpass
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Allpass:
		return "allpass"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= None && m <= Allpass
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(name string) (Mode, error) {
	for m := None; m <= Allpass; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return None, fmt.Errorf("interp: unknown mode %q", name)
}

// Linear2 interpolates between a (frac=0) and b (frac=1).
func Linear2(frac, a, b float64) float64 {
	return (1-frac)*a + frac*b
}

// AllpassCoefficient returns the first-order allpass coefficient that
// approximates a delay of frac samples: c = frac / (2 - frac).
func AllpassCoefficient(frac float64) float64 {
	return frac / (2 - frac)
}

// AllpassFilter is a first-order allpass fractional-delay interpolator.
// It keeps its previous output as state, so it must be fed every sample
// of the stream it interpolates and reset whenever that stream changes.
type AllpassFilter struct {
	state float64
}

// Tick interpolates between a and b at frac and advances the filter state.
//
//	y = c*b + a - c*y[n-1], c = frac / (2 - frac)
func (f *AllpassFilter) Tick(frac, a, b float64) float64 {
	c := AllpassCoefficient(frac)
	out := b*c + a - c*f.state
	f.state = out
	return out
}

// Peek returns what Tick would return without advancing the state.
func (f *AllpassFilter) Peek(frac, a, b float64) float64 {
	c := AllpassCoefficient(frac)
	return b*c + a - c*f.state
}

// State returns the previous output.
func (f *AllpassFilter) State() float64 { return f.state }

// Reset zeroes the filter state.
func (f *AllpassFilter) Reset() { f.state = 0 }
