package buffer

import "fmt"

// Block is an ordered set of channel buffers of equal length.
type Block struct {
	channels [][]float64
}

// NewBlock returns a zero-filled block with the given shape.
// Negative dimensions are treated as zero.
func NewBlock(channels, frames int) Block {
	channels = max(channels, 0)
	frames = max(frames, 0)

	backing := make([]float64, channels*frames)
	chans := make([][]float64, channels)
	for ch := range chans {
		chans[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}

	return Block{channels: chans}
}

// FromChannels wraps existing channel slices without copying.
// All channels must have the same length.
func FromChannels(channels ...[]float64) (Block, error) {
	for ch := 1; ch < len(channels); ch++ {
		if len(channels[ch]) != len(channels[0]) {
			return Block{}, fmt.Errorf("channel %d has %d frames, want %d", ch, len(channels[ch]), len(channels[0]))
		}
	}

	return Block{channels: channels}, nil
}

// NumChannels returns the number of channels.
func (b Block) NumChannels() int {
	return len(b.channels)
}

// NumFrames returns the number of samples per channel.
func (b Block) NumFrames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of channel ch. Mutations are visible to the
// block's owner.
func (b Block) Channel(ch int) []float64 {
	return b.channels[ch]
}

// ClearChannel sets every sample of channel ch to 0.
func (b Block) ClearChannel(ch int) {
	clear(b.channels[ch])
}

// Clear sets every sample of every channel to 0.
func (b Block) Clear() {
	for _, c := range b.channels {
		clear(c)
	}
}

// Sub returns a view of frames [start, end) that shares memory with b.
// Indices are clamped to valid bounds. The returned block reuses a channel
// header slice only when dst has enough capacity, so callers on the audio
// path pass a pre-sized dst to avoid allocating.
func (b Block) Sub(dst [][]float64, start, end int) Block {
	frames := b.NumFrames()
	start = min(max(start, 0), frames)
	end = min(max(end, start), frames)

	if cap(dst) < len(b.channels) {
		dst = make([][]float64, len(b.channels))
	}
	dst = dst[:len(b.channels)]

	for ch, c := range b.channels {
		dst[ch] = c[start:end]
	}

	return Block{channels: dst}
}
