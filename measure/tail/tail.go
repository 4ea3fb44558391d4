package tail

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dattorro/dsp/window"
)

// Errors returned by tail analysis functions.
var (
	ErrEmptySignal       = errors.New("tail: signal is empty")
	ErrLengthMismatch    = errors.New("tail: channel lengths differ")
	ErrInvalidSampleRate = errors.New("tail: sample rate must be positive")
	ErrInvalidWindow     = errors.New("tail: window must be positive")
	ErrNoDecay           = errors.New("tail: insufficient decay for RT calculation")
)

// floorDB is the Schroeder curve value used where no energy remains.
const floorDB = -200.0

// WindowRMS returns the RMS of each consecutive window of size samples.
// A trailing partial window is measured over the samples it has.
func WindowRMS(x []float64, size int) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if size <= 0 {
		return nil, ErrInvalidWindow
	}

	out := make([]float64, 0, (len(x)+size-1)/size)
	for start := 0; start < len(x); start += size {
		w := x[start:min(start+size, len(x))]
		out = append(out, math.Sqrt(vecmath.DotProduct(w, w)/float64(len(w))))
	}

	return out, nil
}

// SchroederDB returns the backward-integrated energy of x normalized to
// 0 dB at the first sample:
//
//	S(n) = 10*log10( sum_{k>=n} x[k]^2 / sum_k x[k]^2 )
//
// Samples after the last non-zero value are reported at -200 dB.
func SchroederDB(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	return schroeder(x), nil
}

func schroeder(x []float64) []float64 {
	out := make([]float64, len(x))

	var acc float64
	for i := len(x) - 1; i >= 0; i-- {
		acc += x[i] * x[i]
		out[i] = acc
	}

	total := out[0]
	for i, e := range out {
		if total <= 0 || e <= 0 {
			out[i] = floorDB
			continue
		}
		out[i] = 10 * math.Log10(e/total)
	}

	return out
}

// RT60 estimates the reverberation time of x in seconds by regression on
// the Schroeder curve between -5 and -35 dB (T30), falling back to -5 to
// -25 dB (T20) when the tail does not decay far enough.
func RT60(x []float64, sampleRate float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	curve := schroeder(x)
	if rt := decayTime(curve, sampleRate, -5, -35); rt > 0 {
		return rt, nil
	}
	if rt := decayTime(curve, sampleRate, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// decayTime fits a line to curve between startDB and endDB and extrapolates
// it to -60 dB. It returns 0 when the range is not reached or not falling.
func decayTime(curve []float64, sampleRate, startDB, endDB float64) float64 {
	first, last := -1, -1
	for i, v := range curve {
		if first < 0 && v <= startDB {
			first = i
		}
		if first >= 0 && v <= endDB {
			last = i
			break
		}
	}
	if first < 0 || last <= first {
		return 0
	}

	var sx, sy, sxx, sxy float64
	for i := first; i <= last; i++ {
		x := float64(i - first)
		y := curve[i]
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}

	n := float64(last - first + 1)
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}

	slope := (n*sxy - sx*sy) / den * sampleRate // dB per second
	if slope >= 0 {
		return 0
	}

	return -60 / slope
}

// Correlation returns the normalized cross-correlation of l and r at lag 0,
// in [-1, 1]. The channels are not mean-corrected. Two silent channels
// correlate as 1.
func Correlation(l, r []float64) (float64, error) {
	if len(l) == 0 || len(r) == 0 {
		return 0, ErrEmptySignal
	}
	if len(l) != len(r) {
		return 0, ErrLengthMismatch
	}

	ll := vecmath.DotProduct(l, l)
	rr := vecmath.DotProduct(r, r)
	if ll == 0 && rr == 0 {
		return 1, nil
	}
	if ll == 0 || rr == 0 {
		return 0, nil
	}

	c := vecmath.DotProduct(l, r) / math.Sqrt(ll*rr)

	return math.Max(-1, math.Min(1, c)), nil
}

// SpectralCentroid returns the power-weighted mean frequency of x in Hz.
// x is Hann windowed and zero-padded to the next power of two. A silent
// frame has a centroid of 0.
func SpectralCentroid(x []float64, sampleRate float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	size := nextPowerOf2(len(x))

	frame := append([]float64(nil), x...)
	window.Apply(window.TypeHann, frame)

	in := make([]complex128, size)
	for i, v := range frame {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, err
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return 0, err
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(spec[k])
		im[k] = imag(spec[k])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(size)
	}

	total := vecmath.Sum(power)
	if total == 0 {
		return 0, nil
	}

	return vecmath.DotProduct(power, freqs) / total, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
