package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Grow returns a zero-extended copy of buf with length n. The returned slice
// never aliases buf, so a failed allocation leaves buf untouched. If n does
// not exceed len(buf), buf is returned unchanged.
func Grow(buf []float64, n int) []float64 {
	if n <= len(buf) {
		return buf
	}
	grown := make([]float64, n)
	copy(grown, buf)
	return grown
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
