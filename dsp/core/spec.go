package core

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is wrapped by every ProcessSpec validation failure.
var ErrInvalidSpec = errors.New("invalid processing spec")

// ProcessSpec describes the stream a processor is prepared for. It is set
// before streaming starts and again whenever the host renegotiates.
type ProcessSpec struct {
	SampleRate   float64
	MaxBlockSize int
	NumChannels  int
}

// SpecOption mutates a ProcessSpec.
type SpecOption func(*ProcessSpec)

// DefaultProcessSpec returns a stereo 48 kHz spec with 512-sample blocks.
func DefaultProcessSpec() ProcessSpec {
	return ProcessSpec{
		SampleRate:   48000,
		MaxBlockSize: 512,
		NumChannels:  2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) SpecOption {
	return func(spec *ProcessSpec) {
		spec.SampleRate = sampleRate
	}
}

// WithMaxBlockSize sets the largest block the host will deliver.
func WithMaxBlockSize(blockSize int) SpecOption {
	return func(spec *ProcessSpec) {
		spec.MaxBlockSize = blockSize
	}
}

// WithChannels sets the number of processed channels.
func WithChannels(channels int) SpecOption {
	return func(spec *ProcessSpec) {
		spec.NumChannels = channels
	}
}

// NewProcessSpec applies opts to the default spec. The result is not
// validated; call Validate before handing it to a processor.
func NewProcessSpec(opts ...SpecOption) ProcessSpec {
	spec := DefaultProcessSpec()
	for _, opt := range opts {
		if opt != nil {
			opt(&spec)
		}
	}
	return spec
}

// Validate reports whether the spec can be used for processing.
func (s ProcessSpec) Validate() error {
	if s.SampleRate <= 0 || !IsFinite(s.SampleRate) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %f", ErrInvalidSpec, s.SampleRate)
	}

	if s.NumChannels < 1 {
		return fmt.Errorf("%w: channel count must be >= 1: %d", ErrInvalidSpec, s.NumChannels)
	}

	if s.MaxBlockSize < 1 {
		return fmt.Errorf("%w: max block size must be >= 1: %d", ErrInvalidSpec, s.MaxBlockSize)
	}

	return nil
}
