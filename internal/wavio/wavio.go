// Package wavio reads and writes PCM WAV files as buffer.Block values
// using go-audio/wav.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-comp/dsp/buffer"
)

const pcmFormat = 1

var (
	ErrInvalidFile       = errors.New("wavio: invalid wav file")
	ErrUnsupportedFormat = errors.New("wavio: unsupported wav format")
)

// File is decoded WAV audio with samples normalised to [-1, 1).
type File struct {
	Block      buffer.Block
	SampleRate int
	BitDepth   int
}

// Decode reads a PCM WAV stream.
func Decode(r io.ReadSeeker) (File, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return File{}, ErrInvalidFile
	}
	if dec.WavAudioFormat != pcmFormat {
		return File{}, fmt.Errorf("%w: audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	if !supportedBitDepth(bitDepth) {
		return File{}, fmt.Errorf("%w: %d bit", ErrUnsupportedFormat, bitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("wavio: decode pcm: %w", err)
	}
	if buf == nil {
		return File{}, fmt.Errorf("%w: empty pcm buffer", ErrInvalidFile)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return File{}, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	frames := len(buf.Data) / channels
	scale := 1 / fullScale(bitDepth)

	interleaved := make([]float64, frames*channels)
	for i := range interleaved {
		interleaved[i] = float64(buf.Data[i]) * scale
	}

	block := buffer.NewBlock(channels, frames)
	if err := block.Deinterleave(interleaved); err != nil {
		return File{}, fmt.Errorf("wavio: %w", err)
	}

	return File{Block: block, SampleRate: int(dec.SampleRate), BitDepth: bitDepth}, nil
}

// Encode writes f as a PCM WAV stream. Samples outside [-1, 1) are
// clipped.
func Encode(w io.WriteSeeker, f File) error {
	if !supportedBitDepth(f.BitDepth) {
		return fmt.Errorf("%w: %d bit", ErrUnsupportedFormat, f.BitDepth)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("wavio: sample rate must be positive: %d", f.SampleRate)
	}

	channels := f.Block.NumChannels()
	if channels < 1 {
		return fmt.Errorf("wavio: block has no channels")
	}

	interleaved := make([]float64, channels*f.Block.NumFrames())
	if err := f.Block.Interleave(interleaved); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	scale := fullScale(f.BitDepth)
	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = quantize(v, scale)
	}

	enc := wav.NewEncoder(w, f.SampleRate, f.BitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: f.SampleRate},
		Data:           data,
		SourceBitDepth: f.BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: write pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize: %w", err)
	}

	return nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile encodes f to path, replacing any existing file.
func WriteFile(path string, f File) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(fh, f); err != nil {
		_ = fh.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return fh.Close()
}

func supportedBitDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

func fullScale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

func quantize(v, scale float64) int {
	if math.IsNaN(v) {
		return 0
	}
	q := math.Round(v * scale)
	return int(max(-scale, min(scale-1, q)))
}
