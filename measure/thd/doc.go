// Package thd measures total harmonic distortion of a periodic signal.
//
// The signal is Hann-windowed, zero-padded to a power of two and
// transformed with algo-fft. Power is summed over a few bins around the
// fundamental and each harmonic, and THD is reported as the amplitude
// ratio sqrt(sum harmonic power / fundamental power).
package thd
