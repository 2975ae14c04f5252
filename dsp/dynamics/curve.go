package dynamics

import "math"

// Coefficient returns the one-pole smoothing coefficient for a time
// constant of timeMs at sampleRate: exp(-1 / (timeMs/1000 * sampleRate)).
// Non-positive inputs yield 0, i.e. an envelope that jumps to the input.
func Coefficient(timeMs, sampleRate float64) float64 {
	samples := timeMs * 0.001 * sampleRate
	if !(samples > 0) {
		return 0
	}
	return math.Exp(-1 / samples)
}

// GainReductionDB returns the static-curve gain reduction (positive dB) for
// a detector level of levelDB. Levels at or below thresholdDB are not
// reduced; above it the excess is reduced to excess/ratio.
func GainReductionDB(levelDB, thresholdDB, ratio float64) float64 {
	excess := levelDB - thresholdDB
	if !(excess > 0) || !(ratio > 1) {
		return 0
	}
	return excess - excess/ratio
}

// StaticOutputDB returns the settled output level for a constant input of
// inputDB: threshold + (input-threshold)/ratio above threshold, the input
// itself below it.
func StaticOutputDB(inputDB, thresholdDB, ratio float64) float64 {
	return inputDB - GainReductionDB(inputDB, thresholdDB, ratio)
}

// follow advances a one-pole peak envelope by one sample. The attack
// coefficient applies while x rises above env, the release coefficient
// otherwise.
func follow(env, x, attackCoeff, releaseCoeff float64) float64 {
	if x > env {
		return attackCoeff*env + (1-attackCoeff)*x
	}
	return releaseCoeff*env + (1-releaseCoeff)*x
}
