// Package tail measures rendered reverb tails.
//
// The helpers work on the wet output of a tank driven by an impulse:
//
//   - WindowRMS: energy envelope over consecutive windows
//   - SchroederDB: backward-integrated energy decay curve
//   - Correlation: interchannel correlation coefficient
//   - SpectralCentroid: power-weighted mean frequency of a frame
//
// Analyzer combines them into a Report for a stereo pair.
//
// # Usage
//
//	a := tail.NewAnalyzer(48000)
//	rep, err := a.Analyze(left, right)
//	fmt.Printf("RT60 = %.2f s, corr = %.2f\n", rep.RT60, rep.Correlation)
package tail
