// Package host drives a processor over a whole recording the way an
// audio host would: fixed-size blocks, optionally paced to the audio
// clock so that a control surface can change parameters mid-stream.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cwbudde/algo-comp/dsp/buffer"
)

// Processor is the block-processing contract the host drives.
type Processor interface {
	Prepare(sampleRate float64, maxBlockSize, numInputs, numOutputs int) error
	ProcessBlock(block buffer.Block, numInputs int)
	ReleaseResources()
	GainReductionDB(ch int) float64
}

// Options configures a run.
type Options struct {
	BlockSize int
	// Realtime waits one block duration between blocks.
	Realtime bool
	// OnBlock, if set, runs after each block with the block index and the
	// frame offset of the next block.
	OnBlock func(index, nextFrame int)
}

// Stats summarises a run.
type Stats struct {
	Blocks  int
	Frames  int
	Elapsed time.Duration
	// MaxGainReductionDB is the largest reduction seen on any channel.
	MaxGainReductionDB float64
}

// Run prepares proc for block, streams block through it in place and
// releases it again. Cancelling ctx stops the run between blocks and
// returns ctx.Err() together with the stats so far.
func Run(ctx context.Context, proc Processor, block buffer.Block, sampleRate float64, opts Options) (Stats, error) {
	if opts.BlockSize < 1 {
		return Stats{}, fmt.Errorf("host: block size must be >= 1: %d", opts.BlockSize)
	}

	channels := block.NumChannels()
	frames := block.NumFrames()

	if err := proc.Prepare(sampleRate, opts.BlockSize, channels, channels); err != nil {
		return Stats{}, fmt.Errorf("host: prepare: %w", err)
	}
	defer proc.ReleaseResources()

	var tick <-chan time.Time
	if opts.Realtime {
		period := max(time.Duration(float64(opts.BlockSize)/sampleRate*float64(time.Second)), time.Microsecond)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	views := make([][]float64, channels)
	start := time.Now()
	stats := Stats{}

	log.Debug().
		Int("channels", channels).
		Int("frames", frames).
		Int("block_size", opts.BlockSize).
		Bool("realtime", opts.Realtime).
		Msg("host run started")

	for pos := 0; pos < frames; pos += opts.BlockSize {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		end := min(pos+opts.BlockSize, frames)
		proc.ProcessBlock(block.Sub(views, pos, end), channels)

		for ch := range channels {
			stats.MaxGainReductionDB = max(stats.MaxGainReductionDB, proc.GainReductionDB(ch))
		}

		stats.Blocks++
		stats.Frames = end

		if opts.OnBlock != nil {
			opts.OnBlock(stats.Blocks-1, end)
		}

		if tick != nil && end < frames {
			select {
			case <-tick:
			case <-ctx.Done():
				stats.Elapsed = time.Since(start)
				return stats, ctx.Err()
			}
		}
	}

	stats.Elapsed = time.Since(start)

	log.Info().
		Int("blocks", stats.Blocks).
		Int("frames", stats.Frames).
		Dur("elapsed", stats.Elapsed).
		Float64("max_gr_db", stats.MaxGainReductionDB).
		Msg("host run finished")

	return stats, nil
}
