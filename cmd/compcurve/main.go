// Command compcurve prints the measured characteristic of a compressor
// setting.
//
// Usage:
//
//	compcurve [flags]
//
// It prints the static input/output curve, the settling time after a
// level step up (attack) and down (release), and the THD a low-frequency
// sine picks up through the compressor.
//
// Examples:
//
//	compcurve
//	compcurve -threshold -24 -ratio 8
//	compcurve -attack 5 -release 20 -tone 50
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-comp/dsp/params"
	"github.com/cwbudde/algo-comp/measure/curve"
)

const (
	settleToleranceDB = 0.5
	curveStepDB       = 6.0
)

func main() {
	def := params.DefaultParameterSet()

	threshold := flag.Float64("threshold", def.ThresholdDB, "threshold in dB")
	ratio := flag.Float64("ratio", def.Ratio, "compression ratio (snapped to the ratio choices)")
	attack := flag.Float64("attack", def.AttackMs, "attack time in ms")
	release := flag.Float64("release", def.ReleaseMs, "release time in ms")
	sampleRate := flag.Float64("rate", 48000, "sample rate in Hz")
	lowDB := flag.Float64("from", -60, "lowest input level of the static curve in dB")
	highDB := flag.Float64("to", 12, "highest input level of the static curve in dB")
	toneHz := flag.Float64("tone", 100, "THD test tone frequency in Hz")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: compcurve [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the static curve, settling times and THD of a compressor setting.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  compcurve -threshold -24 -ratio 8\n")
		fmt.Fprintf(os.Stderr, "  compcurve -attack 5 -release 20 -tone 50\n")
	}
	flag.Parse()

	store := params.NewStore()
	store.Restore(params.ParameterSet{
		ThresholdDB: *threshold,
		AttackMs:    *attack,
		ReleaseMs:   *release,
		Ratio:       *ratio,
	})

	cfg := curve.Config{SampleRate: *sampleRate, Params: store.Snapshot()}

	if err := run(os.Stdout, cfg, *lowDB, *highDB, *toneHz); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, cfg curve.Config, lowDB, highDB, toneHz float64) error {
	p := cfg.Params
	if _, err := fmt.Fprintf(w, "threshold %.1f dB, ratio %.1f:1, attack %.0f ms, release %.0f ms\n\n",
		p.ThresholdDB, p.Ratio, p.AttackMs, p.ReleaseMs); err != nil {
		return err
	}

	if err := printCurve(w, cfg, levels(lowDB, highDB, curveStepDB)); err != nil {
		return err
	}

	if err := printTiming(w, cfg); err != nil {
		return err
	}

	return printTHD(w, cfg, toneHz)
}

func levels(lowDB, highDB, step float64) []float64 {
	var out []float64
	for l := lowDB; l <= highDB+1e-9; l += step {
		out = append(out, l)
	}
	return out
}

func printCurve(w io.Writer, cfg curve.Config, inputs []float64) error {
	points, err := curve.StaticCurve(cfg, inputs)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Input [dB]\tOutput [dB]\tReduction [dB]\n")
	fmt.Fprintf(tw, "----------\t-----------\t--------------\n")

	for _, pt := range points {
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\n", pt.InputDB, pt.OutputDB, pt.ReductionDB)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush curve table: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

func printTiming(w io.Writer, cfg curve.Config) error {
	// Steps span the threshold by 20 dB either way.
	low := cfg.Params.ThresholdDB - 20
	high := cfg.Params.ThresholdDB + 20

	attack, err := curve.SettlingSamples(cfg, low, high, settleToleranceDB)
	if err != nil {
		return fmt.Errorf("attack settling: %w", err)
	}

	release, err := curve.SettlingSamples(cfg, high, low, settleToleranceDB)
	if err != nil {
		return fmt.Errorf("release settling: %w", err)
	}

	ms := func(samples int) float64 { return float64(samples) / cfg.SampleRate * 1000 }

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Step\tFrom [dB]\tTo [dB]\tSettled [ms]\tSamples\n")
	fmt.Fprintf(tw, "----\t---------\t-------\t------------\t-------\n")
	fmt.Fprintf(tw, "attack\t%.1f\t%.1f\t%.2f\t%d\n", low, high, ms(attack), attack)
	fmt.Fprintf(tw, "release\t%.1f\t%.1f\t%.2f\t%d\n", high, low, ms(release), release)

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush timing table: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

func printTHD(w io.Writer, cfg curve.Config, toneHz float64) error {
	// Drive the tone 12 dB over the threshold, capped at full scale.
	level := min(cfg.Params.ThresholdDB+12, 0)

	res, err := curve.ToneTHD(cfg, toneHz, level)
	if err != nil {
		return fmt.Errorf("tone THD: %w", err)
	}

	_, err = fmt.Fprintf(w, "THD at %.0f Hz, %.1f dB peak: %.3f %% (%.1f dB)\n",
		toneHz, level, res.THD*100, res.THDdB)
	return err
}
