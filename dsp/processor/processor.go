// Package processor wires the parameter store and the compressor engine
// into the call sequence a host drives: Prepare before streaming, then
// ProcessBlock once per audio block.
package processor

import (
	"fmt"

	"github.com/cwbudde/algo-comp/dsp/buffer"
	"github.com/cwbudde/algo-comp/dsp/core"
	"github.com/cwbudde/algo-comp/dsp/dynamics"
	"github.com/cwbudde/algo-comp/dsp/params"
)

// Name is the processor's display name.
const Name = "algo-comp Compressor"

// Processor is a compressor effect with a shared parameter store.
//
// Params may be used from any goroutine. Prepare, ReleaseResources and
// ProcessBlock must be called from the host's processing sequence, never
// concurrently with each other.
type Processor struct {
	store *params.Store
	comp  *dynamics.Compressor
}

// New returns a processor with default parameters. It must be prepared
// before ProcessBlock has any effect.
func New() *Processor {
	return &Processor{
		store: params.NewStore(),
		comp:  dynamics.NewCompressor(),
	}
}

// Params returns the parameter store shared with control surfaces.
func (p *Processor) Params() *params.Store { return p.store }

// Prepare configures the engine for a stream with numOutputs channels.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize, numInputs, numOutputs int) error {
	if !IsLayoutSupported(numInputs, numOutputs) {
		return fmt.Errorf("%w: unsupported layout %d in / %d out", core.ErrInvalidSpec, numInputs, numOutputs)
	}

	return p.comp.Configure(core.ProcessSpec{
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
		NumChannels:  numOutputs,
	})
}

// ReleaseResources resets the engine state once playback stops.
func (p *Processor) ReleaseResources() {
	p.comp.Reset()
}

// ProcessBlock compresses block in place. Channels at index numInputs and
// above carry no input and are cleared first. Parameters are read once and
// applied to the whole block.
func (p *Processor) ProcessBlock(block buffer.Block, numInputs int) {
	for ch := max(numInputs, 0); ch < block.NumChannels(); ch++ {
		block.ClearChannel(ch)
	}

	p.comp.Process(block, p.store.Snapshot())
}

// GainReductionDB returns the last block's peak gain reduction on ch.
func (p *Processor) GainReductionDB(ch int) float64 {
	return p.comp.GainReductionDB(ch)
}

// NumChannels returns the prepared channel count, 0 before Prepare. It is
// safe to call from the control context, also while Prepare runs.
func (p *Processor) NumChannels() int {
	return p.comp.MeteredChannels()
}

// IsLayoutSupported reports whether a mono or stereo layout with matching
// input and output channel counts was requested.
func IsLayoutSupported(numInputs, numOutputs int) bool {
	if numOutputs != 1 && numOutputs != 2 {
		return false
	}
	return numInputs == numOutputs
}

// AcceptsMIDI reports false: the processor handles audio only.
func (p *Processor) AcceptsMIDI() bool { return false }

// ProducesMIDI reports false.
func (p *Processor) ProducesMIDI() bool { return false }

// LatencySamples reports the processing delay; the compressor has none.
func (p *Processor) LatencySamples() int { return 0 }

// TailLengthSeconds reports how long output continues after input stops.
func (p *Processor) TailLengthSeconds() float64 { return 0 }
