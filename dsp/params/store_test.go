package params

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	if got := s.Snapshot(); got != DefaultParameterSet() {
		t.Fatalf("Snapshot() = %+v, want %+v", got, DefaultParameterSet())
	}
	if s.RatioIndex() != DefaultRatioIndex {
		t.Fatalf("RatioIndex() = %d, want %d", s.RatioIndex(), DefaultRatioIndex)
	}
}

func TestStoreSettersClamp(t *testing.T) {
	s := NewStore()

	s.SetThreshold(-200)
	s.SetAttack(1)
	s.SetRelease(10000)
	s.SetRatio(7.4)

	want := ParameterSet{ThresholdDB: -60, AttackMs: 5, ReleaseMs: 500, Ratio: 7}
	if got := s.Snapshot(); got != want {
		t.Fatalf("Snapshot() = %+v, want %+v", got, want)
	}

	s.SetThreshold(math.NaN())
	if s.Threshold() != DefaultThresholdDB {
		t.Fatalf("Threshold() = %v after NaN, want default", s.Threshold())
	}
}

func TestStoreRatioIndex(t *testing.T) {
	s := NewStore()

	s.SetRatioIndex(1)
	if s.Ratio() != 1.5 {
		t.Fatalf("Ratio() = %v, want 1.5", s.Ratio())
	}

	s.SetRatioIndex(99)
	if s.Ratio() != 100 {
		t.Fatalf("Ratio() = %v, want 100", s.Ratio())
	}

	s.SetRatioIndex(-1)
	if s.Ratio() != 1 {
		t.Fatalf("Ratio() = %v, want 1", s.Ratio())
	}
}

func TestStoreSnapsToStep(t *testing.T) {
	s := NewStore()

	tests := []struct {
		name string
		set  func(float64)
		get  func() float64
		in   float64
		want float64
	}{
		{"threshold down", s.SetThreshold, s.Threshold, -12.4, -12},
		{"threshold up", s.SetThreshold, s.Threshold, -12.6, -13},
		{"threshold near max", s.SetThreshold, s.Threshold, 11.7, 12},
		{"attack", s.SetAttack, s.Attack, 17.5, 18},
		{"attack near min", s.SetAttack, s.Attack, 5.2, 5},
		{"release", s.SetRelease, s.Release, 99.49, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set(tt.in)
			if got := tt.get(); got != tt.want {
				t.Fatalf("stored %v -> %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, d := range Descriptors()[:3] {
		if d.Step != Step {
			t.Fatalf("%s descriptor step = %v, want %v", d.ID, d.Step, Step)
		}
	}
}

func TestStoreRestoreSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	p := ParameterSet{ThresholdDB: -18, AttackMs: 12, ReleaseMs: 80, Ratio: 8}

	s.Restore(p)
	if got := s.Snapshot(); got != p {
		t.Fatalf("Snapshot() = %+v, want %+v", got, p)
	}
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore()

	if err := s.Set(Threshold, -6); err != nil {
		t.Fatalf("Set(threshold) error = %v", err)
	}
	if err := s.Set(Ratio, 20); err != nil {
		t.Fatalf("Set(ratio) error = %v", err)
	}

	v, err := s.Get(Threshold)
	if err != nil || v != -6 {
		t.Fatalf("Get(threshold) = %v, %v; want -6, nil", v, err)
	}
	v, err = s.Get(Ratio)
	if err != nil || v != 20 {
		t.Fatalf("Get(ratio) = %v, %v; want 20, nil", v, err)
	}

	if err := s.Set("knee", 3); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Set(knee) error = %v, want ErrUnknownParameter", err)
	}
	if _, err := s.Get("knee"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Get(knee) error = %v, want ErrUnknownParameter", err)
	}
}

// TestStoreConcurrentNeverTorn hammers the store from writer goroutines
// while a reader checks that every observed value is one of the written
// values. Run with -race to also check the memory model.
func TestStoreConcurrentNeverTorn(t *testing.T) {
	s := NewStore()

	thresholds := []float64{-60, -33, 12}
	attacks := []float64{5, 123, 500}

	valid := func(v float64, set []float64) bool {
		for _, w := range set {
			if v == w {
				return true
			}
		}
		return false
	}

	s.SetThreshold(thresholds[0])
	s.SetAttack(attacks[0])

	const iterations = 20000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range iterations {
			s.SetThreshold(thresholds[i%len(thresholds)])
			s.SetRatioIndex(i % len(RatioChoices))
		}
	}()

	go func() {
		defer wg.Done()
		for i := range iterations {
			s.SetAttack(attacks[i%len(attacks)])
		}
	}()

	for range iterations {
		p := s.Snapshot()
		if !valid(p.ThresholdDB, thresholds) {
			t.Fatalf("torn threshold read: %v", p.ThresholdDB)
		}
		if !valid(p.AttackMs, attacks) {
			t.Fatalf("torn attack read: %v", p.AttackMs)
		}
		if !valid(p.Ratio, RatioChoices[:]) {
			t.Fatalf("invalid ratio read: %v", p.Ratio)
		}
	}

	wg.Wait()
}

func TestStoreReadsDoNotAllocate(t *testing.T) {
	s := NewStore()

	allocs := testing.AllocsPerRun(100, func() {
		_ = s.Snapshot()
	})
	if allocs != 0 {
		t.Fatalf("Snapshot allocated %v times per run, want 0", allocs)
	}
}

func BenchmarkStoreSnapshot(b *testing.B) {
	s := NewStore()

	b.ReportAllocs()

	for b.Loop() {
		_ = s.Snapshot()
	}
}
