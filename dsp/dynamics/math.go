//go:build !fastmath

package dynamics

import "math"

// ampToDB converts a positive linear amplitude to dB.
func ampToDB(x float64) float64 {
	return 20 * math.Log10(x)
}

// dbToAmp converts dB to a linear amplitude.
func dbToAmp(db float64) float64 {
	return math.Pow(10, db/20)
}
