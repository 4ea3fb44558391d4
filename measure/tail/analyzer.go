package tail

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// DefaultCentroidFrame is the frame length, in seconds, of the early and
// late spectral centroids.
const DefaultCentroidFrame = 0.1

// Report summarizes a stereo tail.
type Report struct {
	WindowRMS     []float64 // mid-channel RMS per analysis window
	RT60          float64   // seconds, 0 when the tail does not decay far enough
	Correlation   float64   // interchannel correlation over the whole tail
	EarlyCentroid float64   // Hz, first frame after the onset
	LateCentroid  float64   // Hz, frame one second after the onset (or the last frame)
	Peak          float64   // largest absolute sample of either channel
	Onset         int       // index of the first non-zero sample
}

// Analyzer computes a Report from a rendered stereo tail.
type Analyzer struct {
	SampleRate float64
	Window     float64 // analysis window in seconds
}

// NewAnalyzer creates an analyzer with one-second RMS windows.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate, Window: 1}
}

// Analyze measures the stereo pair l, r. A tail that is too short to reach
// -25 dB reports RT60 = 0 without failing.
func (a *Analyzer) Analyze(l, r []float64) (Report, error) {
	if len(l) == 0 || len(r) == 0 {
		return Report{}, ErrEmptySignal
	}
	if len(l) != len(r) {
		return Report{}, ErrLengthMismatch
	}
	if a.SampleRate <= 0 {
		return Report{}, ErrInvalidSampleRate
	}

	window := int(math.Round(a.Window * a.SampleRate))
	if window <= 0 {
		return Report{}, ErrInvalidWindow
	}

	mid := make([]float64, len(l))
	vecmath.AddBlock(mid, l, r)
	vecmath.ScaleBlockInPlace(mid, 0.5)

	rep := Report{
		Peak:  math.Max(vecmath.MaxAbs(l), vecmath.MaxAbs(r)),
		Onset: onset(l, r),
	}

	var err error
	if rep.WindowRMS, err = WindowRMS(mid, window); err != nil {
		return Report{}, err
	}

	rep.RT60, err = RT60(mid[rep.Onset:], a.SampleRate)
	if err != nil && !errors.Is(err, ErrNoDecay) {
		return Report{}, err
	}

	if rep.Correlation, err = Correlation(l, r); err != nil {
		return Report{}, err
	}

	frame := max(1, int(DefaultCentroidFrame*a.SampleRate))
	early := mid[rep.Onset:min(rep.Onset+frame, len(mid))]
	lateStart := min(rep.Onset+int(a.SampleRate), max(rep.Onset, len(mid)-frame))
	late := mid[lateStart:min(lateStart+frame, len(mid))]

	if rep.EarlyCentroid, err = SpectralCentroid(early, a.SampleRate); err != nil {
		return Report{}, err
	}
	if rep.LateCentroid, err = SpectralCentroid(late, a.SampleRate); err != nil {
		return Report{}, err
	}

	return rep, nil
}

// onset returns the first index where either channel is non-zero, or 0 for
// an all-silent pair.
func onset(l, r []float64) int {
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			return i
		}
	}
	return 0
}
