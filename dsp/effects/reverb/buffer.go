package reverb

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dattorro/dsp/core"
)

// ProcessMonoInPlace runs buf through the tank with the input duplicated to
// both channels and mixes in place:
//
//	buf[i] = dry*buf[i] + wet*left(buf[i])
//
// The block length may vary between calls. Scratch memory grows to the
// largest block seen and is reused afterwards.
func (t *Dattorro) ProcessMonoInPlace(buf []float64) {
	if len(buf) == 0 {
		return
	}

	wet := t.scratch(len(buf))
	for i, x := range buf {
		wet[i], _ = t.Process(x, x)
	}

	t.mix(buf, wet)
}

// ProcessStereoInterleavedInPlace runs an interleaved L,R,L,R,... block
// through the tank and mixes each channel in place with its own wet output.
// A trailing odd sample is left untouched.
func (t *Dattorro) ProcessStereoInterleavedInPlace(buf []float64) {
	n := len(buf) &^ 1
	if n == 0 {
		return
	}
	buf = buf[:n]

	wet := t.scratch(n)
	for i := 0; i < n; i += 2 {
		wet[i], wet[i+1] = t.Process(buf[i], buf[i+1])
	}

	t.mix(buf, wet)
}

func (t *Dattorro) scratch(n int) []float64 {
	t.wetBuf = core.EnsureLen(t.wetBuf, n)
	return t.wetBuf
}

func (t *Dattorro) mix(dst, wet []float64) {
	vecmath.ScaleBlockInPlace(dst, t.coeffs.dry)
	vecmath.ScaleBlockInPlace(wet, t.coeffs.wet)
	vecmath.AddBlockInPlace(dst, wet)
}
