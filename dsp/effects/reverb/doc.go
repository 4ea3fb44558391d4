// Package reverb implements Dattorro's plate reverberator.
//
// See J. Dattorro, "Effect Design, Part 1: Reverberator and Other Filters",
// J. Audio Eng. Soc. 45(9), 1997.
//
// The [Dattorro] tank sums the stereo input to mono, runs it through a
// predelay, a one-pole bandwidth filter and four input diffusers, then
// feeds two cross-coupled decay loops. Each loop holds a modulated allpass
// diffuser, a damped delay, a second diffuser and a long delay whose output
// feeds the other loop. The stereo output is a signed sum of seven fixed
// taps per channel; left and right read different lines and offsets, which
// decorrelates them.
//
// All line lengths and tap offsets are tuned at 29761 Hz and rescaled by
// size*sampleRate/29761, so the character of the tank is the same at any
// sample rate.
//
// A tank is not safe for concurrent use. Independent tanks share nothing.
package reverb
