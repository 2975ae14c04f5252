package dynamics

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-comp/dsp/buffer"
	"github.com/cwbudde/algo-comp/dsp/core"
	"github.com/cwbudde/algo-comp/dsp/params"
)

// Compressor is a multichannel feed-forward compressor with one envelope
// follower per channel.
//
// A new Compressor is unconfigured and passes audio through unchanged.
// Configure must run before streaming and whenever the ProcessSpec changes;
// it must not run concurrently with Process. GainReductionDB may be called
// from any goroutine.
type Compressor struct {
	spec       core.ProcessSpec
	configured bool

	// Per-channel envelope, linear amplitude. 0 is silence.
	env []float64

	// Scratch sized to spec.MaxBlockSize during Configure.
	gains []float64

	// Coefficients for the last seen parameter snapshot.
	last          params.ParameterSet
	thresholdLin  float64
	attackCoeff   float64
	releaseCoeff  float64
	coeffsCurrent bool

	meters atomic.Pointer[meterBank]
}

// meterBank holds the per-channel gain reduction of the last block as
// float64 bits, readable without locks.
type meterBank struct {
	reduction []atomic.Uint64
}

// NewCompressor returns an unconfigured compressor.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Configure validates spec, sizes all per-channel state and resets every
// envelope to silence.
func (c *Compressor) Configure(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	c.spec = spec
	c.env = make([]float64, spec.NumChannels)
	c.gains = make([]float64, spec.MaxBlockSize)
	c.meters.Store(&meterBank{reduction: make([]atomic.Uint64, spec.NumChannels)})
	c.coeffsCurrent = false
	c.configured = true

	return nil
}

// Configured reports whether Configure has succeeded at least once.
func (c *Compressor) Configured() bool { return c.configured }

// Spec returns the spec passed to the last successful Configure.
func (c *Compressor) Spec() core.ProcessSpec { return c.spec }

// Reset returns every envelope and meter to silence without changing the
// spec.
func (c *Compressor) Reset() {
	clear(c.env)

	if bank := c.meters.Load(); bank != nil {
		for i := range bank.reduction {
			bank.reduction[i].Store(0)
		}
	}
}

// MeteredChannels returns the channel count of the meter bank installed by
// the last successful Configure, 0 before that. Like GainReductionDB it may
// be called from any goroutine.
func (c *Compressor) MeteredChannels() int {
	bank := c.meters.Load()
	if bank == nil {
		return 0
	}
	return len(bank.reduction)
}

// Envelope returns the follower state of channel ch in linear amplitude.
// It reads processing state and must not race with Process.
func (c *Compressor) Envelope(ch int) float64 {
	if ch < 0 || ch >= len(c.env) {
		return 0
	}
	return c.env[ch]
}

// GainReductionDB returns the largest gain reduction, in positive dB,
// applied to channel ch during the most recent Process call. Unknown
// channels and channels missing from the last block report 0.
func (c *Compressor) GainReductionDB(ch int) float64 {
	bank := c.meters.Load()
	if bank == nil || ch < 0 || ch >= len(bank.reduction) {
		return 0
	}
	return math.Float64frombits(bank.reduction[ch].Load())
}

// Process compresses block in place using the parameter snapshot p.
//
// Channels beyond the configured channel count are left untouched. Blocks
// longer than the configured maximum block size are processed in chunks.
// An unconfigured compressor leaves the block unchanged.
func (c *Compressor) Process(block buffer.Block, p params.ParameterSet) {
	if !c.configured {
		return
	}

	c.updateCoefficients(p)

	channels := min(block.NumChannels(), c.spec.NumChannels)
	frames := block.NumFrames()
	bank := c.meters.Load()

	for ch := range channels {
		samples := block.Channel(ch)
		minGain := 1.0

		for start := 0; start < frames; start += c.spec.MaxBlockSize {
			end := min(start+c.spec.MaxBlockSize, frames)
			if g := c.processChunk(ch, samples[start:end]); g < minGain {
				minGain = g
			}
		}

		bank.reduction[ch].Store(math.Float64bits(reductionDB(minGain)))
	}

	for ch := channels; ch < len(bank.reduction); ch++ {
		bank.reduction[ch].Store(0)
	}
}

// processChunk runs the follower and gain computer over samples, which
// holds at most MaxBlockSize frames, and returns the smallest gain used.
func (c *Compressor) processChunk(ch int, samples []float64) float64 {
	gains := c.gains[:len(samples)]
	env := c.env[ch]
	minGain := 1.0

	for i, s := range samples {
		env = core.FlushDenormals(follow(env, math.Abs(s), c.attackCoeff, c.releaseCoeff))
		if !core.IsFinite(env) {
			env = 0
			gains[i] = 1
			continue
		}

		g := c.gainFor(env)
		gains[i] = g
		if g < minGain {
			minGain = g
		}
	}

	c.env[ch] = env
	vecmath.MulBlockInPlace(samples, gains)

	return minGain
}

// gainFor maps an envelope level to a linear gain multiplier.
func (c *Compressor) gainFor(env float64) float64 {
	if env <= c.thresholdLin {
		return 1
	}

	reduction := GainReductionDB(ampToDB(env), c.last.ThresholdDB, c.last.Ratio)
	if reduction <= 0 {
		return 1
	}

	return dbToAmp(-reduction)
}

// updateCoefficients clamps p and recomputes the cached coefficients when
// the snapshot changed since the previous block.
func (c *Compressor) updateCoefficients(p params.ParameterSet) {
	p = p.Clamped()
	if c.coeffsCurrent && p == c.last {
		return
	}

	c.last = p
	c.thresholdLin = core.DBToLinear(p.ThresholdDB)
	c.attackCoeff = Coefficient(p.AttackMs, c.spec.SampleRate)
	c.releaseCoeff = Coefficient(p.ReleaseMs, c.spec.SampleRate)
	c.coeffsCurrent = true
}

// reductionDB converts a gain multiplier in (0, 1] to positive dB of
// reduction.
func reductionDB(gain float64) float64 {
	if gain >= 1 || gain <= 0 {
		return 0
	}
	return -ampToDB(gain)
}
