// Package delay provides the circular delay line used by the reverb tank.
//
// A single [Line] type covers both plain and modulated delays. The nominal
// delay N keeps 2N samples active: the read point sits N samples ahead of
// the write cursor (equivalently N behind), which leaves room for an LFO to
// swing the read point around it in both directions. Plain lines simply
// never enable modulation; the interpolation strategy ([interp.Mode]) is
// chosen at construction and only matters while modulation is active.
//
// Reading before writing yields a delay of exactly N samples:
//
//	y := line.Read()
//	line.Write(x)
//
// Lines never shrink their storage. Lengths of two samples or less are
// ignored and modulation extents are clamped below the read offset, so
// every method is total and none of them return errors.
package delay
