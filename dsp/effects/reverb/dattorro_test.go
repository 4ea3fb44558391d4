package reverb

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dattorro/dsp/interp"
	"github.com/cwbudde/algo-dattorro/internal/testutil"
)

const referenceRate = 29761

func newTank(t *testing.T, sampleRate int, opts ...Option) *Dattorro {
	t.Helper()
	r, err := NewDattorro(sampleRate, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// render feeds the same signal to both inputs and returns the wet channels.
func render(r *Dattorro, in []float64) (left, right []float64) {
	left = make([]float64, len(in))
	right = make([]float64, len(in))
	for i, x := range in {
		left[i], right[i] = r.Process(x, x)
	}
	return left, right
}

func TestNewDattorroValidation(t *testing.T) {
	for _, sr := range []int{0, -44100} {
		if _, err := NewDattorro(sr); err == nil {
			t.Fatalf("expected error for sample rate %d", sr)
		}
	}

	bad := DefaultParams(48000)
	bad.Decay = math.NaN()
	if _, err := NewDattorro(48000, WithParams(bad)); err == nil {
		t.Fatal("expected error for NaN decay")
	}
}

func TestReferenceRateTopology(t *testing.T) {
	r := newTank(t, referenceRate)
	if err := r.SetParam(ParamSize, 1.0); err != nil {
		t.Fatal(err)
	}

	want := []int{142, 379, 107, 277, 672, 908, 4453, 4217, 3720, 3163, 1800, 2656}
	got := r.LineLengths()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %d want %d", i, got[i], want[i])
		}
	}

	left, right := r.TapOffsets()
	for i, tp := range leftTaps {
		if left[i] != tp.offset {
			t.Fatalf("left tap %d: got %d want %d", i, left[i], tp.offset)
		}
	}
	for i, tp := range rightTaps {
		if right[i] != tp.offset {
			t.Fatalf("right tap %d: got %d want %d", i, right[i], tp.offset)
		}
	}
}

func TestSizeRescalesLinesAndTaps(t *testing.T) {
	r := newTank(t, 2*referenceRate)

	for i, n := range r.LineLengths() {
		if want := 2 * referenceLengths[i]; n != want {
			t.Fatalf("line %d at 2x rate: got %d want %d", i, n, want)
		}
	}

	r.SetSize(0.5)
	for i, n := range r.LineLengths() {
		if n != referenceLengths[i] {
			t.Fatalf("line %d at 2x rate, size 0.5: got %d want %d", i, n, referenceLengths[i])
		}
	}

	if err := r.SetParam(ParamSize, 1.5); err != nil {
		t.Fatal(err)
	}
	left, right := r.TapOffsets()
	for i, tp := range leftTaps {
		if want := int(math.Round(float64(tp.offset) * 3)); left[i] != want {
			t.Fatalf("left tap %d: got %d want %d", i, left[i], want)
		}
	}
	for i, tp := range rightTaps {
		if want := int(math.Round(float64(tp.offset) * 3)); right[i] != want {
			t.Fatalf("right tap %d: got %d want %d", i, right[i], want)
		}
	}
}

func TestTapOffsetsStayInsideLines(t *testing.T) {
	for _, sr := range []int{22050, referenceRate, 44100, 48000, 96000} {
		for _, size := range []float64{0.25, 1, 2} {
			r := newTank(t, sr)
			r.SetSize(size)
			left, right := r.TapOffsets()
			for i, tp := range leftTaps {
				if n := r.lines[tp.line].ActiveLength(); left[i] >= n {
					t.Fatalf("sr=%d size=%v left tap %d offset %d >= active %d", sr, size, i, left[i], n)
				}
			}
			for i, tp := range rightTaps {
				if n := r.lines[tp.line].ActiveLength(); right[i] >= n {
					t.Fatalf("sr=%d size=%v right tap %d offset %d >= active %d", sr, size, i, right[i], n)
				}
			}
		}
	}
}

func TestSilenceInvariance(t *testing.T) {
	r := newTank(t, 48000)

	left, right := render(r, make([]float64, 200000))
	testutil.RequireSilent(t, left)
	testutil.RequireSilent(t, right)
}

func TestImpulseProducesTail(t *testing.T) {
	r := newTank(t, 44100)

	left, right := render(r, testutil.Impulse(44100, 0))
	testutil.RequireFinite(t, left)
	testutil.RequireFinite(t, right)

	if testutil.RMS(left[22050:]) == 0 || testutil.RMS(right[22050:]) == 0 {
		t.Fatal("expected a non-zero tail half a second after the impulse")
	}
}

func TestBoundedDecay(t *testing.T) {
	r := newTank(t, referenceRate)
	if err := r.SetParam(ParamDecay, 0.7); err != nil {
		t.Fatal(err)
	}
	if err := r.SetParam(ParamDamping, 0.2); err != nil {
		t.Fatal(err)
	}

	const seconds = 6
	left, right := render(r, testutil.Impulse(seconds*referenceRate, 0))
	testutil.RequireFinite(t, left)

	windows := make([]float64, seconds)
	for w := range windows {
		lo, hi := w*referenceRate, (w+1)*referenceRate
		windows[w] = math.Hypot(testutil.RMS(left[lo:hi]), testutil.RMS(right[lo:hi]))
	}

	for w := 2; w < seconds; w++ {
		if !(windows[w] < windows[w-1]) {
			t.Fatalf("window %d RMS %g not below window %d RMS %g", w, windows[w], w-1, windows[w-1])
		}
	}
	if windows[seconds-1] > 1e-2*windows[1] {
		t.Fatalf("tail did not decay: last window %g, second window %g", windows[seconds-1], windows[1])
	}
	if windows[seconds-1] > 1e-4 {
		t.Fatalf("tail above threshold after %d s: %g", seconds, windows[seconds-1])
	}
}

func TestStereoDecorrelation(t *testing.T) {
	r := newTank(t, 48000)

	left, right := render(r, testutil.DeterministicNoise(17, 0.5, 24000))

	differs := false
	for i := range left {
		if left[i] != 0 && left[i] != right[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("identical inputs produced identical output channels")
	}
}

func TestLoopsCrossFeed(t *testing.T) {
	r := newTank(t, referenceRate, WithInterpolation(interp.None))
	if err := r.SetParam(ParamModulation, 0); err != nil {
		t.Fatal(err)
	}

	// Prime loop Q's long line so its next read returns 1.
	qLong := r.lines[loops[1].long]
	qLong.Write(1)
	for i := 1; i < qLong.Length(); i++ {
		qLong.Write(0)
	}

	r.Process(0, 0)

	decay := r.coeffs.decay
	if got := r.lines[loops[0].allpass].Tap(1); math.Abs(got-decay) > 1e-15 {
		t.Fatalf("loop P input: got %v want %v", got, decay)
	}
	if got := r.lines[loops[1].allpass].Tap(1); got != 0 {
		t.Fatalf("loop Q input: got %v want 0", got)
	}
}

func TestModulationOffMatchesUninterpolated(t *testing.T) {
	plain := newTank(t, 44100, WithInterpolation(interp.None))
	allpass := newTank(t, 44100, WithInterpolation(interp.Allpass))
	for _, r := range []*Dattorro{plain, allpass} {
		if err := r.SetParam(ParamModulation, 0); err != nil {
			t.Fatal(err)
		}
	}

	in := testutil.DeterministicNoise(23, 0.5, 20000)
	wantL, wantR := render(plain, in)
	gotL, gotR := render(allpass, in)
	testutil.RequireSliceNearlyEqual(t, gotL, wantL, 0)
	testutil.RequireSliceNearlyEqual(t, gotR, wantR, 0)
}

func TestInterpolationModesDiffer(t *testing.T) {
	in := testutil.DeterministicNoise(29, 0.5, 30000)

	outs := map[interp.Mode][]float64{}
	for _, mode := range []interp.Mode{interp.None, interp.Linear, interp.Allpass} {
		r := newTank(t, 44100, WithInterpolation(mode))
		if r.Interpolation() != mode {
			t.Fatalf("Interpolation: got %v want %v", r.Interpolation(), mode)
		}
		l, _ := render(r, in)
		testutil.RequireFinite(t, l)
		outs[mode] = l
	}

	d, err := testutil.MaxAbsDiff(outs[interp.Linear], outs[interp.Allpass])
	if err != nil {
		t.Fatal(err)
	}
	if d == 0 {
		t.Fatal("linear and allpass interpolation produced identical output")
	}
}

func TestSetInterpolation(t *testing.T) {
	r := newTank(t, 44100)
	if r.Interpolation() != interp.Allpass {
		t.Fatalf("default interpolation: got %v want allpass", r.Interpolation())
	}

	r.SetInterpolation(interp.Linear)
	for _, loop := range loops {
		if m := r.lines[loop.allpass].Mode(); m != interp.Linear {
			t.Fatalf("modulated line mode: got %v want linear", m)
		}
	}
	if m := r.lines[line4453].Mode(); m != interp.None {
		t.Fatalf("plain line mode changed to %v", m)
	}

	r.SetInterpolation(interp.Mode(7))
	if r.Interpolation() != interp.Linear {
		t.Fatalf("invalid mode accepted: %v", r.Interpolation())
	}
}

func TestResetMatchesFreshTank(t *testing.T) {
	in := testutil.DeterministicNoise(31, 0.5, 8000)

	fresh := newTank(t, 48000)
	wantL, wantR := render(fresh, in)

	used := newTank(t, 48000)
	render(used, testutil.DeterministicNoise(37, 1, 5000))
	used.Reset()
	gotL, gotR := render(used, in)

	testutil.RequireSliceNearlyEqual(t, gotL, wantL, 0)
	testutil.RequireSliceNearlyEqual(t, gotR, wantR, 0)
}

func TestIndependentTanks(t *testing.T) {
	a := newTank(t, 48000)
	b := newTank(t, 48000)

	render(a, testutil.DeterministicNoise(41, 1, 4000))

	for i := 0; i < 1000; i++ {
		l, r := b.Process(0, 0)
		if l != 0 || r != 0 {
			t.Fatalf("tank b picked up state from tank a at frame %d", i)
		}
	}
}

func TestSetSampleRateReappliesSize(t *testing.T) {
	r := newTank(t, referenceRate)
	r.SetSize(2)

	if err := r.SetSampleRate(2 * referenceRate); err != nil {
		t.Fatal(err)
	}
	for i, n := range r.LineLengths() {
		if want := 4 * referenceLengths[i]; n != want {
			t.Fatalf("line %d: got %d want %d", i, n, want)
		}
	}
	if r.SampleRate() != 2*referenceRate {
		t.Fatalf("SampleRate: got %d", r.SampleRate())
	}
	if got, want := r.PreDelayLength(), int(math.Round(0.001*2*referenceRate)); got != want {
		t.Fatalf("predelay: got %d want %d", got, want)
	}

	if err := r.SetSampleRate(0); err == nil {
		t.Fatal("expected error for sample rate 0")
	}
}

func TestSetSampleRateClampsBandwidth(t *testing.T) {
	r := newTank(t, 96000)
	if err := r.SetParam(ParamBandwidth, 40000); err != nil {
		t.Fatal(err)
	}

	if err := r.SetSampleRate(44100); err != nil {
		t.Fatal(err)
	}
	if r.Bandwidth() != 22050 {
		t.Fatalf("bandwidth: got %v want 22050", r.Bandwidth())
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	r := newTank(t, 48000)
	allocs := testing.AllocsPerRun(1000, func() {
		r.Process(0.25, -0.25)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per call", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	r, err := NewDattorro(48000)
	if err != nil {
		b.Fatal(err)
	}
	in := testutil.DeterministicNoise(1, 0.5, 4096)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		x := in[i&4095]
		r.Process(x, x)
	}
}
