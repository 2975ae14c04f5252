package buffer

import "fmt"

// Deinterleave copies frame-interleaved samples into b.
// len(src) must equal NumChannels()*NumFrames().
func (b Block) Deinterleave(src []float64) error {
	n := b.NumChannels()
	if len(src) != n*b.NumFrames() {
		return fmt.Errorf("interleaved length %d does not match %d channels x %d frames", len(src), n, b.NumFrames())
	}

	for ch, c := range b.channels {
		for i := range c {
			c[i] = src[i*n+ch]
		}
	}

	return nil
}

// Interleave copies b into dst in frame-interleaved order.
// len(dst) must equal NumChannels()*NumFrames().
func (b Block) Interleave(dst []float64) error {
	n := b.NumChannels()
	if len(dst) != n*b.NumFrames() {
		return fmt.Errorf("interleaved length %d does not match %d channels x %d frames", len(dst), n, b.NumFrames())
	}

	for ch, c := range b.channels {
		for i, v := range c {
			dst[i*n+ch] = v
		}
	}

	return nil
}
