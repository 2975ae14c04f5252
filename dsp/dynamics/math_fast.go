//go:build fastmath

package dynamics

import (
	"math"

	approx "github.com/meko-christian/algo-approx"
)

const (
	dbPerNeper  = 20 / math.Ln10
	nepersPerDB = math.Ln10 / 20
)

// ampToDB converts a positive linear amplitude to dB using a fast natural
// log approximation.
func ampToDB(x float64) float64 {
	return approx.FastLog(x) * dbPerNeper
}

// dbToAmp converts dB to a linear amplitude using a fast exp approximation.
func dbToAmp(db float64) float64 {
	return approx.FastExp(db * nepersPerDB)
}
