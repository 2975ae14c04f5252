package buffer

import "testing"

func TestNewBlockShape(t *testing.T) {
	b := NewBlock(2, 8)
	if b.NumChannels() != 2 {
		t.Fatalf("NumChannels() = %d, want 2", b.NumChannels())
	}
	if b.NumFrames() != 8 {
		t.Fatalf("NumFrames() = %d, want 8", b.NumFrames())
	}
	for ch := range b.NumChannels() {
		for i, v := range b.Channel(ch) {
			if v != 0 {
				t.Fatalf("Channel(%d)[%d] = %v, want 0", ch, i, v)
			}
		}
	}
}

func TestNewBlockNegative(t *testing.T) {
	b := NewBlock(-1, -5)
	if b.NumChannels() != 0 || b.NumFrames() != 0 {
		t.Fatalf("shape = %dx%d, want 0x0", b.NumChannels(), b.NumFrames())
	}
}

func TestNewBlockChannelsDoNotOverlap(t *testing.T) {
	b := NewBlock(2, 4)
	b.Channel(0)[3] = 1
	if b.Channel(1)[0] != 0 {
		t.Fatal("writing channel 0 leaked into channel 1")
	}

	// append on a channel must not overwrite the next channel
	c := append(b.Channel(0), 7)
	_ = c
	if b.Channel(1)[0] != 0 {
		t.Fatal("append on channel 0 overwrote channel 1")
	}
}

func TestFromChannelsSharesMemory(t *testing.T) {
	l := []float64{1, 2, 3}
	r := []float64{4, 5, 6}

	b, err := FromChannels(l, r)
	if err != nil {
		t.Fatalf("FromChannels() error = %v", err)
	}

	b.Channel(1)[0] = 99
	if r[0] != 99 {
		t.Fatal("FromChannels should share underlying memory")
	}
}

func TestFromChannelsLengthMismatch(t *testing.T) {
	if _, err := FromChannels([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched channel lengths")
	}
}

func TestClearChannel(t *testing.T) {
	b, _ := FromChannels([]float64{1, 2}, []float64{3, 4})
	b.ClearChannel(1)

	if b.Channel(0)[0] != 1 || b.Channel(0)[1] != 2 {
		t.Fatal("ClearChannel(1) modified channel 0")
	}
	if b.Channel(1)[0] != 0 || b.Channel(1)[1] != 0 {
		t.Fatal("ClearChannel(1) did not clear channel 1")
	}

	b.Clear()
	if b.Channel(0)[0] != 0 {
		t.Fatal("Clear() did not clear channel 0")
	}
}

func TestSubView(t *testing.T) {
	b, _ := FromChannels([]float64{0, 1, 2, 3, 4}, []float64{5, 6, 7, 8, 9})
	scratch := make([][]float64, 2)

	sub := b.Sub(scratch, 1, 3)
	if sub.NumFrames() != 2 {
		t.Fatalf("NumFrames() = %d, want 2", sub.NumFrames())
	}

	sub.Channel(1)[0] = -1
	if b.Channel(1)[1] != -1 {
		t.Fatal("Sub should share memory with the parent block")
	}

	clamped := b.Sub(scratch, -3, 100)
	if clamped.NumFrames() != 5 {
		t.Fatalf("clamped NumFrames() = %d, want 5", clamped.NumFrames())
	}
}

func TestSubDoesNotAllocateWithScratch(t *testing.T) {
	b := NewBlock(2, 64)
	scratch := make([][]float64, 2)

	allocs := testing.AllocsPerRun(100, func() {
		_ = b.Sub(scratch, 16, 48)
	})
	if allocs != 0 {
		t.Fatalf("Sub allocated %v times per run, want 0", allocs)
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	src := []float64{1, -1, 2, -2, 3, -3}
	b := NewBlock(2, 3)

	if err := b.Deinterleave(src); err != nil {
		t.Fatalf("Deinterleave() error = %v", err)
	}
	if b.Channel(0)[2] != 3 || b.Channel(1)[2] != -3 {
		t.Fatalf("unexpected channels: %v %v", b.Channel(0), b.Channel(1))
	}

	dst := make([]float64, len(src))
	if err := b.Interleave(dst); err != nil {
		t.Fatalf("Interleave() error = %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestInterleaveLengthMismatch(t *testing.T) {
	b := NewBlock(2, 3)
	if err := b.Deinterleave(make([]float64, 5)); err == nil {
		t.Fatal("expected Deinterleave length error")
	}
	if err := b.Interleave(make([]float64, 7)); err == nil {
		t.Fatal("expected Interleave length error")
	}
}
