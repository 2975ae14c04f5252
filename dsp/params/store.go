package params

import (
	"math"
	"sync/atomic"
)

// atomicFloat is a float64 cell whose loads and stores are single 64-bit
// atomic operations, so a reader never observes a torn value.
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

// Store holds the current parameter values. All methods are safe for
// concurrent use and never block; the zero value is not ready, use
// NewStore.
//
// Each parameter is stored independently. A Snapshot taken while another
// goroutine writes several parameters may mix old and new values of
// different parameters, but every individual value is one that was
// written.
type Store struct {
	threshold atomicFloat
	attack    atomicFloat
	release   atomicFloat
	ratioIdx  atomic.Int32
}

// NewStore returns a store holding DefaultParameterSet.
func NewStore() *Store {
	s := &Store{}
	s.Restore(DefaultParameterSet())
	return s
}

// Snapshot returns the current values.
func (s *Store) Snapshot() ParameterSet {
	return ParameterSet{
		ThresholdDB: s.threshold.Load(),
		AttackMs:    s.attack.Load(),
		ReleaseMs:   s.release.Load(),
		Ratio:       RatioChoices[s.RatioIndex()],
	}
}

// Restore overwrites every parameter with the clamped values of p. Ratio is
// snapped to the nearest entry of RatioChoices.
func (s *Store) Restore(p ParameterSet) {
	s.SetThreshold(p.ThresholdDB)
	s.SetAttack(p.AttackMs)
	s.SetRelease(p.ReleaseMs)
	s.SetRatio(p.Ratio)
}

// Threshold returns the threshold in dB.
func (s *Store) Threshold() float64 { return s.threshold.Load() }

// Attack returns the attack time in milliseconds.
func (s *Store) Attack() float64 { return s.attack.Load() }

// Release returns the release time in milliseconds.
func (s *Store) Release() float64 { return s.release.Load() }

// Ratio returns the selected compression ratio.
func (s *Store) Ratio() float64 { return RatioChoices[s.RatioIndex()] }

// RatioIndex returns the selected index into RatioChoices.
func (s *Store) RatioIndex() int {
	idx := int(s.ratioIdx.Load())
	if idx < 0 || idx >= len(RatioChoices) {
		return DefaultRatioIndex
	}
	return idx
}

// SetThreshold stores dB clamped to [MinThresholdDB, MaxThresholdDB] and
// rounded to Step.
func (s *Store) SetThreshold(dB float64) {
	s.threshold.Store(snapToStep(clampOrDefault(dB, MinThresholdDB, MaxThresholdDB, DefaultThresholdDB)))
}

// SetAttack stores ms clamped to [MinAttackMs, MaxAttackMs] and rounded to
// Step.
func (s *Store) SetAttack(ms float64) {
	s.attack.Store(snapToStep(clampOrDefault(ms, MinAttackMs, MaxAttackMs, DefaultAttackMs)))
}

// SetRelease stores ms clamped to [MinReleaseMs, MaxReleaseMs] and rounded
// to Step.
func (s *Store) SetRelease(ms float64) {
	s.release.Store(snapToStep(clampOrDefault(ms, MinReleaseMs, MaxReleaseMs, DefaultReleaseMs)))
}

// SetRatio selects the RatioChoices entry nearest to ratio.
func (s *Store) SetRatio(ratio float64) {
	s.ratioIdx.Store(int32(NearestRatioIndex(ratio)))
}

// SetRatioIndex selects RatioChoices[idx], clamping idx to the valid range.
func (s *Store) SetRatioIndex(idx int) {
	idx = min(max(idx, 0), len(RatioChoices)-1)
	s.ratioIdx.Store(int32(idx))
}
