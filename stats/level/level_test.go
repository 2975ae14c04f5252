package level

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-comp/dsp/buffer"
	"github.com/cwbudde/algo-comp/internal/testutil"
)

func TestMeasureSine(t *testing.T) {
	// 1000 Hz at 48 kHz completes whole cycles in 4800 samples.
	l := Measure(testutil.DeterministicSine(1000, 48000, 0.5, 4800))

	if l.Samples != 4800 {
		t.Fatalf("Samples = %d, want 4800", l.Samples)
	}
	testutil.RequireNear(t, "peak", l.Peak, 0.5, 1e-9)
	testutil.RequireNear(t, "rms", l.RMS, 0.5/math.Sqrt2, 1e-9)
	testutil.RequireNear(t, "crest dB", l.CrestDB, 20*math.Log10(math.Sqrt2), 1e-6)
	testutil.RequireNear(t, "peak dB", l.PeakDB, -6.0206, 1e-3)
}

func TestMeasureDCHasNoCrest(t *testing.T) {
	l := Measure(testutil.DC(-0.25, 100))

	testutil.RequireNear(t, "peak", l.Peak, 0.25, 0)
	testutil.RequireNear(t, "rms", l.RMS, 0.25, 1e-15)
	testutil.RequireNear(t, "crest dB", l.CrestDB, 0, 1e-12)
}

func TestMeasureSilence(t *testing.T) {
	for name, sig := range map[string][]float64{"empty": nil, "zeros": testutil.Silence(64)} {
		t.Run(name, func(t *testing.T) {
			l := Measure(sig)
			if !math.IsInf(l.PeakDB, -1) || !math.IsInf(l.RMSDB, -1) {
				t.Fatalf("dB levels = %v / %v, want -Inf", l.PeakDB, l.RMSDB)
			}
			if l.CrestDB != 0 {
				t.Fatalf("CrestDB = %v, want 0", l.CrestDB)
			}
		})
	}
}

func TestMeterMatchesMeasure(t *testing.T) {
	sig := testutil.DeterministicNoise(7, 0.8, 1000)

	var m Meter
	for start := 0; start < len(sig); start += 128 {
		m.Update(sig[start:min(start+128, len(sig))])
	}

	got, want := m.Result(), Measure(sig)
	if got.Samples != want.Samples || got.Peak != want.Peak {
		t.Fatalf("streaming = %+v, want %+v", got, want)
	}
	testutil.RequireNear(t, "rms", got.RMS, want.RMS, 1e-12)

	m.Reset()
	if m.Result().Samples != 0 {
		t.Fatal("Reset did not clear the meter")
	}
}

func TestMeasureBlock(t *testing.T) {
	b, err := buffer.FromChannels(testutil.DC(1, 10), testutil.DC(0, 10))
	if err != nil {
		t.Fatalf("FromChannels() error = %v", err)
	}

	l := MeasureBlock(b)
	if l.Samples != 20 || l.Peak != 1 {
		t.Fatalf("levels = %+v, want 20 samples with peak 1", l)
	}
	testutil.RequireNear(t, "rms", l.RMS, math.Sqrt(0.5), 1e-15)
}

func BenchmarkMeterUpdate(b *testing.B) {
	sig := testutil.DeterministicNoise(1, 1, 4096)
	var m Meter

	b.ReportAllocs()
	for b.Loop() {
		m.Update(sig)
	}
}
