package delay

import "github.com/cwbudde/algo-dattorro/dsp/interp"

// Option configures a Line at construction time.
type Option func(*config)

type config struct {
	mode     interp.Mode
	feedback float64
	length   int
}

func defaultConfig() config {
	return config{mode: interp.None}
}

// WithMode selects the interpolation used while the line is modulated.
// Unknown modes are ignored.
func WithMode(mode interp.Mode) Option {
	return func(c *config) {
		if mode.Valid() {
			c.mode = mode
		}
	}
}

// WithFeedback sets the self-feedback coefficient. Zero (the default)
// disables feedback.
func WithFeedback(g float64) Option {
	return func(c *config) {
		c.feedback = g
	}
}

// WithLength sets the nominal delay right after allocation.
func WithLength(n int) Option {
	return func(c *config) {
		c.length = n
	}
}
