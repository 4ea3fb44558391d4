package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dattorro/dsp/core"
	"github.com/cwbudde/algo-dattorro/dsp/delay"
	"github.com/cwbudde/algo-dattorro/dsp/interp"
)

// tankCoeffs are the per-sample multipliers derived from Params.
type tankCoeffs struct {
	bandwidth       float64
	damping         float64
	decay           float64
	decayDiffusion1 float64
	decayDiffusion2 float64
	inputDiffusion1 float64
	inputDiffusion2 float64
	wet             float64
	dry             float64
}

// tankState holds the one-pole filter memories.
type tankState struct {
	preSample float64
	damp      [2]float64
}

// Dattorro is a stereo plate reverb tank.
type Dattorro struct {
	sampleRate int
	params     Params
	mode       interp.Mode

	coeffs tankCoeffs
	state  tankState

	preDelay *delay.Line
	lines    [numLines]*delay.Line

	leftOffsets  [numTaps]int
	rightOffsets [numTaps]int

	wetBuf []float64
}

// Option configures a Dattorro at construction time.
type Option func(*options)

type options struct {
	params *Params
	mode   interp.Mode
}

// WithParams replaces the default parameter set.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = &p
	}
}

// WithInterpolation selects the interpolation of the two modulated lines.
// The default is interp.Allpass. Unknown modes are ignored.
func WithInterpolation(mode interp.Mode) Option {
	return func(o *options) {
		if mode.Valid() {
			o.mode = mode
		}
	}
}

// NewDattorro creates a tank for the given sample rate with every line
// allocated and DefaultParams (or WithParams) applied.
func NewDattorro(sampleRate int, opts ...Option) (*Dattorro, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("dattorro sample rate must be > 0: %d", sampleRate)
	}

	o := options{mode: interp.Allpass}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	t := &Dattorro{sampleRate: sampleRate, mode: o.mode}

	var err error
	t.preDelay, err = delay.New(delay.DefaultCapacity)
	if err != nil {
		return nil, err
	}
	for i := range t.lines {
		lineOpts := []delay.Option{}
		if id := lineID(i); id == loops[0].allpass || id == loops[1].allpass {
			lineOpts = append(lineOpts, delay.WithMode(o.mode))
		}
		t.lines[i], err = delay.New(delay.DefaultCapacity, lineOpts...)
		if err != nil {
			return nil, err
		}
	}

	p := DefaultParams(sampleRate)
	if o.params != nil {
		p = *o.params
	}
	if err := t.SetParams(p); err != nil {
		return nil, err
	}

	return t, nil
}

// Process consumes one stereo frame and returns the wet stereo frame.
// Dry/wet mixing is left to the caller (see ProcessMonoInPlace and
// ProcessStereoInterleavedInPlace).
func (t *Dattorro) Process(left, right float64) (float64, float64) {
	c := &t.coeffs
	s := &t.state

	x := (left + right) / 2
	t.preDelay.Write(x)
	x = t.preDelay.Read()

	x = c.bandwidth*x + (1-c.bandwidth)*s.preSample
	s.preSample = core.FlushDenormals(x)

	x = diffuse(t.lines[inputDiffusers[0]], x, c.inputDiffusion1)
	x = diffuse(t.lines[inputDiffusers[1]], x, c.inputDiffusion1)
	x = diffuse(t.lines[inputDiffusers[2]], x, c.inputDiffusion2)
	x = diffuse(t.lines[inputDiffusers[3]], x, c.inputDiffusion2)

	// Each half is fed by the long line of the other half.
	p := c.decay*t.lines[loops[1].long].Read() + x
	q := c.decay*t.lines[loops[0].long].Read() + x

	t.runLoop(0, p)
	t.runLoop(1, q)

	var outL, outR float64
	for i, tp := range leftTaps {
		outL += tp.sign * t.lines[tp.line].Tap(t.leftOffsets[i])
	}
	for i, tp := range rightTaps {
		outR += tp.sign * t.lines[tp.line].Tap(t.rightOffsets[i])
	}

	return tapGain * outL, tapGain * outR
}

func (t *Dattorro) runLoop(k int, v float64) {
	c := &t.coeffs
	loop := loops[k]

	v = diffuse(t.lines[loop.allpass], v, c.decayDiffusion1)

	d := t.lines[loop.delay]
	d.Write(v)
	v = d.Read()

	v = (1-c.damping)*v + c.damping*t.state.damp[k]
	t.state.damp[k] = core.FlushDenormals(v)

	v *= c.decay
	v = diffuse(t.lines[loop.diffuser], v, c.decayDiffusion2)

	t.lines[loop.long].Write(v)
}

// diffuse runs one Schroeder allpass stage over line d with coefficient g.
func diffuse(d *delay.Line, x, g float64) float64 {
	y := d.Read()
	z := x - g*y
	d.Write(z)
	return y + g*z
}

// Reset clears every line and filter memory. Parameters are kept.
func (t *Dattorro) Reset() {
	t.preDelay.Reset()
	for _, l := range t.lines {
		l.Reset()
	}
	t.state = tankState{}
}

// SetSampleRate changes the sample rate and re-derives every rate-dependent
// quantity: predelay, bandwidth coefficient, LFO rates, line lengths and tap
// offsets. A bandwidth above the new Nyquist frequency is clamped.
func (t *Dattorro) SetSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("dattorro sample rate must be > 0: %d", sampleRate)
	}

	t.sampleRate = sampleRate
	for _, kind := range []Param{ParamPreDelay, ParamBandwidth, ParamModulation, ParamSize} {
		if err := t.SetParam(kind, t.params.Value(kind)); err != nil {
			return err
		}
	}

	return nil
}

// SetSize rescales every line length and output tap offset by
// factor*sampleRate/29761. The factor is clamped to [MinSize, MaxSize].
// Lines never drop below delay.MinLength and taps never below one sample.
func (t *Dattorro) SetSize(factor float64) {
	if !(factor >= MinSize) {
		factor = MinSize
	}
	factor = math.Min(factor, MaxSize)
	t.params.Size = factor

	ratio := factor * float64(t.sampleRate) / dattorroReferenceRate
	for i, l := range t.lines {
		l.SetLength(max(delay.MinLength, scaleLength(referenceLengths[i], ratio)))
	}
	for i, tp := range leftTaps {
		t.leftOffsets[i] = max(1, scaleLength(tp.offset, ratio))
	}
	for i, tp := range rightTaps {
		t.rightOffsets[i] = max(1, scaleLength(tp.offset, ratio))
	}
}

func scaleLength(reference int, ratio float64) int {
	return int(math.Round(float64(reference) * ratio))
}

// SetInterpolation switches the interpolation of the modulated lines.
func (t *Dattorro) SetInterpolation(mode interp.Mode) {
	if !mode.Valid() {
		return
	}
	t.mode = mode
	t.lines[loops[0].allpass].SetMode(mode)
	t.lines[loops[1].allpass].SetMode(mode)
}

// Interpolation returns the interpolation mode of the modulated lines.
func (t *Dattorro) Interpolation() interp.Mode { return t.mode }

// SampleRate returns the sample rate in Hz.
func (t *Dattorro) SampleRate() int { return t.sampleRate }

// LineLengths returns the nominal lengths of the twelve tank lines in
// reference order: 142, 379, 107, 277, 672, 908, 4453, 4217, 3720, 3163,
// 1800, 2656 at 29761 Hz and size 1.
func (t *Dattorro) LineLengths() []int {
	out := make([]int, numLines)
	for i, l := range t.lines {
		out[i] = l.Length()
	}
	return out
}

// PreDelayLength returns the predelay in samples.
func (t *Dattorro) PreDelayLength() int { return t.preDelay.Length() }

// TapOffsets returns copies of the scaled left and right tap offsets.
func (t *Dattorro) TapOffsets() (left, right []int) {
	left = append([]int(nil), t.leftOffsets[:]...)
	right = append([]int(nil), t.rightOffsets[:]...)
	return left, right
}
