package params

import (
	"math"
	"testing"
)

func TestDefaultParameterSet(t *testing.T) {
	p := DefaultParameterSet()
	want := ParameterSet{ThresholdDB: 0, AttackMs: 50, ReleaseMs: 250, Ratio: 3}
	if p != want {
		t.Fatalf("DefaultParameterSet() = %+v, want %+v", p, want)
	}
	if !p.InRange() {
		t.Fatal("defaults should be in range")
	}
}

func TestClamped(t *testing.T) {
	tests := []struct {
		name string
		in   ParameterSet
		want ParameterSet
	}{
		{
			name: "in range untouched",
			in:   ParameterSet{ThresholdDB: -12, AttackMs: 10, ReleaseMs: 100, Ratio: 4},
			want: ParameterSet{ThresholdDB: -12, AttackMs: 10, ReleaseMs: 100, Ratio: 4},
		},
		{
			name: "below minimum",
			in:   ParameterSet{ThresholdDB: -100, AttackMs: 0, ReleaseMs: -1, Ratio: 0.5},
			want: ParameterSet{ThresholdDB: -60, AttackMs: 5, ReleaseMs: 5, Ratio: 1},
		},
		{
			name: "above maximum",
			in:   ParameterSet{ThresholdDB: 40, AttackMs: 1000, ReleaseMs: 9000, Ratio: 1000},
			want: ParameterSet{ThresholdDB: 12, AttackMs: 500, ReleaseMs: 500, Ratio: 100},
		},
		{
			name: "NaN falls back to defaults",
			in:   ParameterSet{ThresholdDB: math.NaN(), AttackMs: math.NaN(), ReleaseMs: math.NaN(), Ratio: math.NaN()},
			want: DefaultParameterSet(),
		},
		{
			name: "infinities clamp",
			in:   ParameterSet{ThresholdDB: math.Inf(-1), AttackMs: math.Inf(1), ReleaseMs: math.Inf(-1), Ratio: math.Inf(1)},
			want: ParameterSet{ThresholdDB: -60, AttackMs: 500, ReleaseMs: 5, Ratio: 100},
		},
		{
			name: "non-enumerated ratio kept",
			in:   ParameterSet{ThresholdDB: 0, AttackMs: 50, ReleaseMs: 250, Ratio: 2.5},
			want: ParameterSet{ThresholdDB: 0, AttackMs: 50, ReleaseMs: 250, Ratio: 2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamped()
			if got != tt.want {
				t.Fatalf("Clamped() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNearestRatioIndex(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{1, 0},
		{1.5, 1},
		{1.6, 1},
		{3, 3},
		{9.2, 9},
		{30, 11},
		{40, 12},
		{1e6, 13},
		{-5, 0},
		{math.NaN(), DefaultRatioIndex},
	}

	for _, tt := range tests {
		if got := NearestRatioIndex(tt.ratio); got != tt.want {
			t.Errorf("NearestRatioIndex(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}
