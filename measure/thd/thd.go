package thd

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultMaxHarmonics = 10
	defaultCaptureBins  = 3
	minSignalLength     = 16
)

// ErrNoFundamental is returned when no usable fundamental is found.
var ErrNoFundamental = errors.New("thd: no fundamental found")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FundamentalHz pins the fundamental; 0 searches for the strongest bin.
	FundamentalHz float64
	// MaxHarmonics limits the harmonics considered (2nd, 3rd, ...).
	MaxHarmonics int
	// CaptureBins is the half-width in bins summed around each peak.
	CaptureBins int
}

// Result holds the measured distortion.
type Result struct {
	FundamentalHz float64
	// THD is the harmonic to fundamental amplitude ratio.
	THD   float64
	THDdB float64
	// Harmonics holds per-harmonic amplitude ratios starting with the 2nd.
	Harmonics []float64
}

// AnalyzeSignal measures THD of signal.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	if len(signal) < minSignalLength {
		return Result{}, fmt.Errorf("thd: signal too short: %d samples, want >= %d", len(signal), minSignalLength)
	}
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return Result{}, fmt.Errorf("thd: sample rate must be positive and finite: %f", cfg.SampleRate)
	}

	maxHarmonics := cfg.MaxHarmonics
	if maxHarmonics <= 0 {
		maxHarmonics = defaultMaxHarmonics
	}

	capture := cfg.CaptureBins
	if capture <= 0 {
		capture = defaultCaptureBins
	}

	power, fftSize, err := powerSpectrum(signal)
	if err != nil {
		return Result{}, err
	}

	binHz := cfg.SampleRate / float64(fftSize)
	maxBin := len(power) - 1

	var fundamental int
	if cfg.FundamentalHz > 0 {
		fundamental = int(math.Round(cfg.FundamentalHz / binHz))
	} else {
		fundamental = strongestBin(power, capture+1)
	}

	if fundamental <= capture || fundamental+capture > maxBin {
		return Result{}, fmt.Errorf("%w: bin %d outside analysable range", ErrNoFundamental, fundamental)
	}

	fundamentalPower := binPower(power, fundamental, capture)
	if fundamentalPower <= 0 {
		return Result{}, fmt.Errorf("%w: zero power at %.1f Hz", ErrNoFundamental, float64(fundamental)*binHz)
	}

	harmonics := make([]float64, 0, maxHarmonics)
	sum := 0.0

	for k := 2; k <= maxHarmonics+1; k++ {
		bin := k * fundamental
		if bin+capture > maxBin {
			break
		}

		p := binPower(power, bin, capture)
		sum += p
		harmonics = append(harmonics, math.Sqrt(p/fundamentalPower))
	}

	ratio := math.Sqrt(sum / fundamentalPower)

	return Result{
		FundamentalHz: float64(fundamental) * binHz,
		THD:           ratio,
		THDdB:         ratioToDB(ratio),
		Harmonics:     harmonics,
	}, nil
}

// powerSpectrum returns |X[k]|^2 for k in [0, N/2] of the Hann-windowed,
// zero-padded signal, together with the FFT size N.
func powerSpectrum(signal []float64) ([]float64, int, error) {
	n := len(signal)
	fftSize := nextPowerOf2(n)

	windowed := make([]float64, n)
	copy(windowed, signal)
	vecmath.MulBlockInPlace(windowed, hann(n))

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, 0, fmt.Errorf("thd: fft plan for size %d: %w", fftSize, err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, fmt.Errorf("thd: forward fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	return power, fftSize, nil
}

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func strongestBin(power []float64, from int) int {
	best := 0
	bestPower := 0.0
	for i := from; i < len(power); i++ {
		if power[i] > bestPower {
			best, bestPower = i, power[i]
		}
	}
	return best
}

func binPower(power []float64, center, halfWidth int) float64 {
	lo := max(center-halfWidth, 0)
	hi := min(center+halfWidth, len(power)-1)

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += power[i]
	}
	return sum
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func ratioToDB(r float64) float64 {
	if r <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(r)
}
