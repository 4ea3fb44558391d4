package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dattorro/dsp/core"
	"github.com/cwbudde/algo-dattorro/dsp/interp"
)

const (
	// DefaultCapacity is the initial storage of a line, in samples.
	DefaultCapacity = 512

	// MinLength is the shortest nominal delay SetLength accepts.
	MinLength = 3
)

// Line is a circular delay line with optional LFO-modulated read point.
type Line struct {
	buffer     []float64
	size       int // active region, 2*length
	length     int
	writePos   int
	readOffset int

	feedback float64
	mode     interp.Mode
	allpass  interp.AllpassFilter

	modulated       bool
	requestedExtent float64
	extent          float64
	frequency       float64 // cycles per sample
	phase           float64
	excursion       int
	fraction        float64
}

// New allocates a zero-filled line with the given storage capacity.
// The line has no active length until SetLength (or WithLength) is applied;
// until then writes are dropped and reads return zero.
func New(capacity int, opts ...Option) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	d := &Line{
		buffer:   make([]float64, capacity),
		mode:     cfg.mode,
		feedback: cfg.feedback,
	}
	if cfg.length > 0 {
		d.SetLength(cfg.length)
	}

	return d, nil
}

// SetLength sets the nominal delay in samples. Storage grows to at least
// 2*n+1 samples if needed; it never shrinks. Lengths below MinLength are
// ignored. A previously requested modulation extent is re-clamped against
// the new read offset.
func (d *Line) SetLength(n int) {
	if n < MinLength {
		return
	}

	if need := 2*n + 1; need > len(d.buffer) {
		d.buffer = core.Grow(d.buffer, need)
	}

	d.length = n
	d.readOffset = n
	d.size = 2 * n
	if d.writePos >= d.size {
		d.writePos %= d.size
	}

	d.applyExtent()
}

// SetModulation sets the LFO depth in samples and its frequency in cycles
// per sample (Hz divided by the sample rate). The effective extent is
// clamped to stay below readOffset-1 so the read point never passes the
// write cursor. An extent of zero disables modulation.
func (d *Line) SetModulation(extent, frequency float64) {
	if !core.IsFinite(extent) || extent < 0 {
		extent = 0
	}
	if !core.IsFinite(frequency) {
		frequency = 0
	}

	d.requestedExtent = extent
	d.frequency = frequency
	d.applyExtent()
}

func (d *Line) applyExtent() {
	ext := d.requestedExtent
	if ext >= float64(d.readOffset-1) {
		ext = float64(d.readOffset - 2)
	}
	if ext < 0 {
		ext = 0
	}

	d.extent = ext
	d.modulated = ext != 0
	if !d.modulated {
		d.excursion = 0
		d.fraction = 0
		d.allpass.Reset()
	}
}

// SetMode switches the interpolation mode and clears the allpass state.
// Unknown modes are ignored.
func (d *Line) SetMode(mode interp.Mode) {
	if !mode.Valid() {
		return
	}
	d.mode = mode
	d.allpass.Reset()
}

// SetFeedback sets the self-feedback coefficient.
func (d *Line) SetFeedback(g float64) {
	d.feedback = g
}

// Write stores one sample and advances the write cursor and the LFO.
// With non-zero feedback the stored value is sample + feedback*out, where
// out is the line output before the write.
func (d *Line) Write(sample float64) {
	if d.size == 0 {
		return
	}

	if d.feedback != 0 {
		sample += d.feedback * d.peek()
	}

	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= d.size {
		d.writePos = 0
	}

	if d.modulated {
		d.advanceLFO()
	}
}

func (d *Line) advanceLFO() {
	const twoPi = 2 * math.Pi

	d.phase += twoPi * d.frequency
	if d.phase >= twoPi || d.phase < 0 {
		d.phase = math.Mod(d.phase, twoPi)
	}

	offset := math.Sin(d.phase) * d.extent
	excursion := math.Floor(offset)
	d.excursion = int(excursion)
	d.fraction = offset - excursion
}

// Read returns the current output: the sample N writes back, displaced by
// the LFO excursion and interpolated according to the mode. In allpass mode
// each call advances the interpolator state, so call it once per sample.
func (d *Line) Read() float64 {
	if d.size == 0 {
		return 0
	}

	a, b := d.neighbours()
	if !d.modulated || d.mode == interp.None {
		return a
	}

	if d.mode == interp.Linear {
		return interp.Linear2(d.fraction, a, b)
	}

	return d.allpass.Tick(d.fraction, a, b)
}

// peek is Read without advancing the allpass state.
func (d *Line) peek() float64 {
	a, b := d.neighbours()
	if !d.modulated || d.mode == interp.None {
		return a
	}

	if d.mode == interp.Linear {
		return interp.Linear2(d.fraction, a, b)
	}

	return d.allpass.Peek(d.fraction, a, b)
}

func (d *Line) neighbours() (float64, float64) {
	ia := wrap(d.writePos+d.readOffset+d.excursion, d.size)
	ib := ia + 1
	if ib >= d.size {
		ib = 0
	}
	return d.buffer[ia], d.buffer[ib]
}

// Tap returns the sample at (writeCursor - index) mod ActiveLength without
// touching any state. Tap(1) is the most recent write.
func (d *Line) Tap(index int) float64 {
	if d.size == 0 {
		return 0
	}
	return d.buffer[wrap(d.writePos-index, d.size)]
}

// Reset clears stored samples, cursors, LFO phase and interpolator state.
// Lengths, modulation settings and feedback are kept.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
	d.phase = 0
	d.excursion = 0
	d.fraction = 0
	d.allpass.Reset()
}

// Length returns the nominal delay in samples.
func (d *Line) Length() int { return d.length }

// ActiveLength returns the size of the circular region in use.
func (d *Line) ActiveLength() int { return d.size }

// Capacity returns the allocated storage in samples.
func (d *Line) Capacity() int { return len(d.buffer) }

// Mode returns the interpolation mode.
func (d *Line) Mode() interp.Mode { return d.mode }

// Feedback returns the self-feedback coefficient.
func (d *Line) Feedback() float64 { return d.feedback }

// Modulated reports whether the LFO currently displaces the read point.
func (d *Line) Modulated() bool { return d.modulated }

// Extent returns the effective (clamped) modulation extent in samples.
func (d *Line) Extent() float64 { return d.extent }

// Frequency returns the LFO frequency in cycles per sample.
func (d *Line) Frequency() float64 { return d.frequency }

// Excursion returns the integer part of the current LFO displacement.
func (d *Line) Excursion() int { return d.excursion }

// Fraction returns the fractional part of the current LFO displacement.
func (d *Line) Fraction() float64 { return d.fraction }

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
