package reverb

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dattorro/dsp/core"
	"github.com/cwbudde/algo-dattorro/dsp/delay"
)

// ErrUnknownParam is returned for a Param outside the known set.
var ErrUnknownParam = errors.New("reverb: unknown parameter")

// Bounds of the PREDELAY and SIZE controls. Both set line lengths, so the
// upper bounds cap the storage a single SetParam call can allocate.
const (
	MinSize     = 1e-3
	MaxSize     = 16.0
	MaxPreDelay = 10.0 // seconds
)

// Param identifies one control of the tank.
type Param int

const (
	ParamPreDelay        Param = iota // seconds, 0..MaxPreDelay
	ParamBandwidth                    // Hz, 0..Nyquist
	ParamDamping                      // 0..1
	ParamDecay                        // 0..1
	ParamDiffusion1                   // decay diffusion 1, 0..1
	ParamDiffusion2                   // decay diffusion 2, 0..1
	ParamInputDiffusion1              // 0..1
	ParamInputDiffusion2              // 0..1
	ParamModulation                   // 0..1
	ParamSize                         // MinSize..MaxSize
	ParamWet                          // dB
	ParamDry                          // dB
	numParams
)

var paramNames = [numParams]string{
	"predelay",
	"bandwidth",
	"damping",
	"decay",
	"diffusion1",
	"diffusion2",
	"input-diffusion1",
	"input-diffusion2",
	"modulation",
	"size",
	"wet",
	"dry",
}

// String returns the parameter name used by ParseParam.
func (p Param) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramNames[p]
}

// Valid reports whether p is a known parameter.
func (p Param) Valid() bool {
	return p >= 0 && p < numParams
}

// AllParams returns every known parameter in application order.
func AllParams() []Param {
	out := make([]Param, numParams)
	for i := range out {
		out[i] = Param(i)
	}
	return out
}

// ParseParam maps a parameter name back to its Param.
func ParseParam(name string) (Param, error) {
	for i, n := range paramNames {
		if n == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Params is a snapshot of every control value, in user units.
type Params struct {
	PreDelay        float64 // seconds
	Bandwidth       float64 // Hz
	Damping         float64
	Decay           float64
	Diffusion1      float64
	Diffusion2      float64
	InputDiffusion1 float64
	InputDiffusion2 float64
	Modulation      float64
	Size            float64
	Wet             float64 // dB
	Dry             float64 // dB
}

// DefaultParams returns the published default settings for sampleRate.
func DefaultParams(sampleRate int) Params {
	return Params{
		PreDelay:        0.001,
		Bandwidth:       float64(sampleRate) / 2,
		Damping:         0.05,
		Decay:           0.7,
		Diffusion1:      0.6,
		Diffusion2:      0.6,
		InputDiffusion1: 0.55,
		InputDiffusion2: 0.625,
		Modulation:      1,
		Size:            1,
		Wet:             -6,
		Dry:             0,
	}
}

// Value returns the field addressed by kind, or NaN for an unknown kind.
func (p Params) Value(kind Param) float64 {
	switch kind {
	case ParamPreDelay:
		return p.PreDelay
	case ParamBandwidth:
		return p.Bandwidth
	case ParamDamping:
		return p.Damping
	case ParamDecay:
		return p.Decay
	case ParamDiffusion1:
		return p.Diffusion1
	case ParamDiffusion2:
		return p.Diffusion2
	case ParamInputDiffusion1:
		return p.InputDiffusion1
	case ParamInputDiffusion2:
		return p.InputDiffusion2
	case ParamModulation:
		return p.Modulation
	case ParamSize:
		return p.Size
	case ParamWet:
		return p.Wet
	case ParamDry:
		return p.Dry
	default:
		return math.NaN()
	}
}

// Set stores v in the field addressed by kind. Unknown kinds are ignored.
func (p *Params) Set(kind Param, v float64) {
	switch kind {
	case ParamPreDelay:
		p.PreDelay = v
	case ParamBandwidth:
		p.Bandwidth = v
	case ParamDamping:
		p.Damping = v
	case ParamDecay:
		p.Decay = v
	case ParamDiffusion1:
		p.Diffusion1 = v
	case ParamDiffusion2:
		p.Diffusion2 = v
	case ParamInputDiffusion1:
		p.InputDiffusion1 = v
	case ParamInputDiffusion2:
		p.InputDiffusion2 = v
	case ParamModulation:
		p.Modulation = v
	case ParamSize:
		p.Size = v
	case ParamWet:
		p.Wet = v
	case ParamDry:
		p.Dry = v
	}
}

// SetParam updates one control. Finite values outside the documented range
// are clamped (PREDELAY to [0, MaxPreDelay], SIZE to [MinSize, MaxSize]);
// NaN, +Inf and unknown kinds are rejected. BANDWIDTH becomes the input
// filter coefficient hz/sampleRate, so Nyquist maps to 0.5. WET and DRY accept
// -Inf dB as silence. Only lengths and coefficients change: no samples are
// produced or cleared.
func (t *Dattorro) SetParam(kind Param, value float64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownParam, int(kind))
	}

	gain := kind == ParamWet || kind == ParamDry
	if math.IsNaN(value) || math.IsInf(value, 1) || (math.IsInf(value, -1) && !gain) {
		return fmt.Errorf("dattorro %s must be finite: %v", kind, value)
	}

	sr := float64(t.sampleRate)

	switch kind {
	case ParamPreDelay:
		value = core.Clamp(value, 0, MaxPreDelay)
		t.preDelay.SetLength(max(delay.MinLength, int(math.Round(value*sr))))
	case ParamBandwidth:
		value = core.Clamp(value, 0, sr/2)
		t.coeffs.bandwidth = value / sr
	case ParamDamping:
		value = core.Clamp(value, 0, 1)
		t.coeffs.damping = value
	case ParamDecay:
		value = core.Clamp(value, 0, 1)
		t.coeffs.decay = value
	case ParamDiffusion1:
		value = core.Clamp(value, 0, 1)
		t.coeffs.decayDiffusion1 = value
	case ParamDiffusion2:
		value = core.Clamp(value, 0, 1)
		t.coeffs.decayDiffusion2 = value
	case ParamInputDiffusion1:
		value = core.Clamp(value, 0, 1)
		t.coeffs.inputDiffusion1 = value
	case ParamInputDiffusion2:
		value = core.Clamp(value, 0, 1)
		t.coeffs.inputDiffusion2 = value
	case ParamModulation:
		value = core.Clamp(value, 0, 1)
		t.lines[loops[0].allpass].SetModulation(modExtentP*value, modRateP/sr)
		t.lines[loops[1].allpass].SetModulation(modExtentQ*value, modRateQ/sr)
	case ParamSize:
		t.SetSize(value)
		return nil
	case ParamWet:
		t.coeffs.wet = core.DBToLinear(value)
	case ParamDry:
		t.coeffs.dry = core.DBToLinear(value)
	}

	t.params.Set(kind, value)

	return nil
}

// SetParams applies every field of p in Param order.
func (t *Dattorro) SetParams(p Params) error {
	for kind := Param(0); kind < numParams; kind++ {
		if err := t.SetParam(kind, p.Value(kind)); err != nil {
			return err
		}
	}
	return nil
}

// Params returns the current settings after clamping.
func (t *Dattorro) Params() Params { return t.params }

// PreDelay returns the predelay in seconds.
func (t *Dattorro) PreDelay() float64 { return t.params.PreDelay }

// Bandwidth returns the input bandwidth in Hz.
func (t *Dattorro) Bandwidth() float64 { return t.params.Bandwidth }

// Damping returns the loop damping amount in [0,1].
func (t *Dattorro) Damping() float64 { return t.params.Damping }

// Decay returns the loop decay in [0,1].
func (t *Dattorro) Decay() float64 { return t.params.Decay }

// Diffusion1 returns the first decay diffusion coefficient.
func (t *Dattorro) Diffusion1() float64 { return t.params.Diffusion1 }

// Diffusion2 returns the second decay diffusion coefficient.
func (t *Dattorro) Diffusion2() float64 { return t.params.Diffusion2 }

// InputDiffusion1 returns the coefficient of the first two input diffusers.
func (t *Dattorro) InputDiffusion1() float64 { return t.params.InputDiffusion1 }

// InputDiffusion2 returns the coefficient of the last two input diffusers.
func (t *Dattorro) InputDiffusion2() float64 { return t.params.InputDiffusion2 }

// Modulation returns the LFO depth scale in [0,1].
func (t *Dattorro) Modulation() float64 { return t.params.Modulation }

// Size returns the size factor.
func (t *Dattorro) Size() float64 { return t.params.Size }

// Wet returns the wet level in dB.
func (t *Dattorro) Wet() float64 { return t.params.Wet }

// Dry returns the dry level in dB.
func (t *Dattorro) Dry() float64 { return t.params.Dry }

// WetGain returns the linear wet gain.
func (t *Dattorro) WetGain() float64 { return t.coeffs.wet }

// DryGain returns the linear dry gain.
func (t *Dattorro) DryGain() float64 { return t.coeffs.dry }
