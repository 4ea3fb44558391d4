// Package interp provides the fractional-delay interpolation strategies used
// by modulated delay lines.
//
// Available methods, from cheapest to highest quality:
//
//   - [None]:    integer read, the fractional part is ignored
//   - [Linear]:  2-point linear interpolation, see [Linear2]
//   - [Allpass]: first-order allpass (unity magnitude, phase-only), see [AllpassFilter]
//
// The [Mode] enum lets [delay.Line] select the algorithm at construction time.
package interp
