// Package level measures peak, RMS and crest factor of audio blocks.
//
// Measure and MeasureBlock work on complete signals. Meter accumulates the
// same figures block by block.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-comp/dsp/buffer"
)

// Levels holds the level statistics of a signal. dB fields are -Inf for
// silence.
type Levels struct {
	Samples int
	Peak    float64
	PeakDB  float64
	RMS     float64
	RMSDB   float64
	// CrestDB is PeakDB - RMSDB, 0 for silence.
	CrestDB float64
}

// Measure returns the levels of signal.
func Measure(signal []float64) Levels {
	var m Meter
	m.Update(signal)
	return m.Result()
}

// MeasureBlock returns the levels over every sample of every channel.
func MeasureBlock(b buffer.Block) Levels {
	var m Meter
	m.UpdateBlock(b)
	return m.Result()
}

// Meter accumulates levels across calls. The zero value is ready to use.
type Meter struct {
	samples int
	sumSq   float64
	peak    float64
}

// Update adds samples to the running statistics.
func (m *Meter) Update(samples []float64) {
	if len(samples) == 0 {
		return
	}

	m.samples += len(samples)
	m.sumSq += vecmath.DotProduct(samples, samples)
	m.peak = max(m.peak, vecmath.MaxAbs(samples))
}

// UpdateBlock adds every channel of b.
func (m *Meter) UpdateBlock(b buffer.Block) {
	for ch := range b.NumChannels() {
		m.Update(b.Channel(ch))
	}
}

// Result returns the statistics so far.
func (m *Meter) Result() Levels {
	if m.samples == 0 {
		return Levels{PeakDB: math.Inf(-1), RMSDB: math.Inf(-1)}
	}

	rms := math.Sqrt(m.sumSq / float64(m.samples))
	l := Levels{
		Samples: m.samples,
		Peak:    m.peak,
		PeakDB:  ampToDB(m.peak),
		RMS:     rms,
		RMSDB:   ampToDB(rms),
	}

	if rms > 0 {
		l.CrestDB = l.PeakDB - l.RMSDB
	}

	return l
}

// Reset clears the accumulated statistics.
func (m *Meter) Reset() {
	*m = Meter{}
}

func ampToDB(v float64) float64 {
	if v == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
