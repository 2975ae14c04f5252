package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// DCAtDB generates a constant signal whose absolute level is levelDB dBFS.
func DCAtDB(levelDB float64, length int) []float64 {
	return DC(math.Pow(10, levelDB/20), length)
}

// Silence returns length zeros.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// LevelDB returns the dBFS level of a single sample magnitude.
func LevelDB(sample float64) float64 {
	return 20 * math.Log10(math.Abs(sample))
}
