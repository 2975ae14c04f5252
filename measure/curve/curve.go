// Package curve characterises a compressor setting by driving a fresh
// dynamics.Compressor with synthetic test signals.
//
// StaticCurve measures the settled input/output characteristic,
// SettlingSamples the time response to a level step and ToneTHD the
// distortion a setting adds to a low-frequency sine.
package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-comp/dsp/buffer"
	"github.com/cwbudde/algo-comp/dsp/core"
	"github.com/cwbudde/algo-comp/dsp/dynamics"
	"github.com/cwbudde/algo-comp/dsp/params"
	"github.com/cwbudde/algo-comp/measure/thd"
)

const (
	// settleTimeConstants is how many follower time constants count as
	// settled; e^-12 leaves the envelope within 1e-5 of its target.
	settleTimeConstants = 12
	analysisBlockSize   = 4096
	toneAnalysisLength  = 8192
)

// ErrNotSettled is returned when the output does not reach the tolerance
// band within the measurement window.
var ErrNotSettled = errors.New("curve: output did not settle")

// Config describes the compressor setting under test.
type Config struct {
	SampleRate float64
	Params     params.ParameterSet
}

// Point is one measured point of the static characteristic.
type Point struct {
	InputDB     float64
	OutputDB    float64
	ReductionDB float64
}

// StaticCurve feeds each input level as a constant signal into a fresh
// compressor and reports the settled output level.
func StaticCurve(cfg Config, inputsDB []float64) ([]Point, error) {
	p := cfg.Params.Clamped()
	n := settleLength(p.AttackMs, cfg.SampleRate)

	points := make([]Point, 0, len(inputsDB))

	for _, in := range inputsDB {
		if !core.IsFinite(in) {
			return nil, fmt.Errorf("curve: input level must be finite: %f", in)
		}

		c, err := newCompressor(cfg.SampleRate)
		if err != nil {
			return nil, err
		}

		block := constantBlock(core.DBToLinear(in), n)
		c.Process(block, p)

		out := core.LinearToDB(math.Abs(block.Channel(0)[n-1]))
		points = append(points, Point{InputDB: in, OutputDB: out, ReductionDB: in - out})
	}

	return points, nil
}

// SettlingSamples settles the compressor at fromDB, steps the input to
// toDB and returns how many samples pass before the output level stays
// within tolDB of the static characteristic at toDB.
func SettlingSamples(cfg Config, fromDB, toDB, tolDB float64) (int, error) {
	if !core.IsFinite(fromDB) || !core.IsFinite(toDB) {
		return 0, fmt.Errorf("curve: step levels must be finite: %f -> %f", fromDB, toDB)
	}
	if !(tolDB > 0) {
		return 0, fmt.Errorf("curve: tolerance must be positive: %f", tolDB)
	}

	p := cfg.Params.Clamped()

	c, err := newCompressor(cfg.SampleRate)
	if err != nil {
		return 0, err
	}

	slowest := max(p.AttackMs, p.ReleaseMs)
	c.Process(constantBlock(core.DBToLinear(fromDB), settleLength(slowest, cfg.SampleRate)), p)

	window := 2 * settleLength(slowest, cfg.SampleRate)
	step := constantBlock(core.DBToLinear(toDB), window)
	c.Process(step, p)

	target := dynamics.StaticOutputDB(toDB, p.ThresholdDB, p.Ratio)
	out := step.Channel(0)

	if math.Abs(core.LinearToDB(math.Abs(out[window-1]))-target) > tolDB {
		return 0, fmt.Errorf("%w: within %d samples", ErrNotSettled, window)
	}

	for i := window - 1; i >= 0; i-- {
		if math.Abs(core.LinearToDB(math.Abs(out[i]))-target) > tolDB {
			return i + 1, nil
		}
	}

	return 0, nil
}

// ToneTHD runs a sine of freqHz at levelDB (peak) through the compressor
// until the envelope has settled and measures the distortion of the
// output.
func ToneTHD(cfg Config, freqHz, levelDB float64) (thd.Result, error) {
	if !(freqHz > 0) || freqHz >= cfg.SampleRate/2 {
		return thd.Result{}, fmt.Errorf("curve: tone frequency out of range: %f Hz", freqHz)
	}
	if !core.IsFinite(levelDB) {
		return thd.Result{}, fmt.Errorf("curve: tone level must be finite: %f", levelDB)
	}

	p := cfg.Params.Clamped()

	c, err := newCompressor(cfg.SampleRate)
	if err != nil {
		return thd.Result{}, err
	}

	settle := settleLength(max(p.AttackMs, p.ReleaseMs), cfg.SampleRate)
	n := settle + toneAnalysisLength

	block := buffer.NewBlock(1, n)
	amp := core.DBToLinear(levelDB)
	w := 2 * math.Pi * freqHz / cfg.SampleRate
	samples := block.Channel(0)
	for i := range samples {
		samples[i] = amp * math.Sin(w*float64(i))
	}

	c.Process(block, p)

	return thd.AnalyzeSignal(samples[settle:], thd.Config{
		SampleRate:    cfg.SampleRate,
		FundamentalHz: freqHz,
	})
}

func newCompressor(sampleRate float64) (*dynamics.Compressor, error) {
	spec := core.NewProcessSpec(
		core.WithSampleRate(sampleRate),
		core.WithMaxBlockSize(analysisBlockSize),
		core.WithChannels(1),
	)

	c := dynamics.NewCompressor()
	if err := c.Configure(spec); err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}

	return c, nil
}

func settleLength(timeMs, sampleRate float64) int {
	return int(math.Ceil(settleTimeConstants*timeMs/1000*sampleRate)) + 1
}

func constantBlock(value float64, n int) buffer.Block {
	block := buffer.NewBlock(1, n)
	ch := block.Channel(0)
	for i := range ch {
		ch[i] = value
	}
	return block
}
