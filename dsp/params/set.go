package params

import (
	"math"

	"github.com/cwbudde/algo-comp/dsp/core"
)

// Parameter ranges and defaults.
const (
	MinThresholdDB     = -60.0
	MaxThresholdDB     = 12.0
	DefaultThresholdDB = 0.0

	MinAttackMs     = 5.0
	MaxAttackMs     = 500.0
	DefaultAttackMs = 50.0

	MinReleaseMs     = 5.0
	MaxReleaseMs     = 500.0
	DefaultReleaseMs = 250.0

	MinRatio = 1.0
	MaxRatio = 100.0

	// DefaultRatioIndex selects 3:1 from RatioChoices.
	DefaultRatioIndex = 3

	// Step is the resolution of threshold (dB), attack and release (ms)
	// as stored by a Store.
	Step = 1.0
)

// RatioChoices is the ordered set of ratios offered to the user.
var RatioChoices = [...]float64{1, 1.5, 2, 3, 4, 5, 6, 7, 8, 10, 15, 20, 50, 100}

// DefaultRatio is RatioChoices[DefaultRatioIndex].
var DefaultRatio = RatioChoices[DefaultRatioIndex]

// ParameterSet is one consistent snapshot of the compressor controls.
type ParameterSet struct {
	ThresholdDB float64
	AttackMs    float64
	ReleaseMs   float64
	Ratio       float64
}

// DefaultParameterSet returns threshold 0 dB, attack 50 ms, release 250 ms
// and ratio 3:1.
func DefaultParameterSet() ParameterSet {
	return ParameterSet{
		ThresholdDB: DefaultThresholdDB,
		AttackMs:    DefaultAttackMs,
		ReleaseMs:   DefaultReleaseMs,
		Ratio:       DefaultRatio,
	}
}

// Clamped returns p with every field limited to its legal range. NaN
// fields fall back to their default. Ratio is clamped to [MinRatio,
// MaxRatio] but not snapped to RatioChoices.
func (p ParameterSet) Clamped() ParameterSet {
	return ParameterSet{
		ThresholdDB: clampOrDefault(p.ThresholdDB, MinThresholdDB, MaxThresholdDB, DefaultThresholdDB),
		AttackMs:    clampOrDefault(p.AttackMs, MinAttackMs, MaxAttackMs, DefaultAttackMs),
		ReleaseMs:   clampOrDefault(p.ReleaseMs, MinReleaseMs, MaxReleaseMs, DefaultReleaseMs),
		Ratio:       clampOrDefault(p.Ratio, MinRatio, MaxRatio, DefaultRatio),
	}
}

// InRange reports whether every field already lies in its legal range.
func (p ParameterSet) InRange() bool {
	return p == p.Clamped()
}

// snapToStep rounds v to the nearest multiple of Step.
func snapToStep(v float64) float64 {
	return math.Round(v/Step) * Step
}

func clampOrDefault(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return core.Clamp(v, lo, hi)
}

// NearestRatioIndex returns the index of the RatioChoices member closest to
// ratio. NaN maps to DefaultRatioIndex.
func NearestRatioIndex(ratio float64) int {
	if math.IsNaN(ratio) {
		return DefaultRatioIndex
	}

	best := 0
	bestDiff := math.Inf(1)
	for i, c := range RatioChoices {
		if d := math.Abs(c - ratio); d < bestDiff {
			best, bestDiff = i, d
		}
	}

	return best
}
