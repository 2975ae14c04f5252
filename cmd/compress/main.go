// Command compress runs a WAV file through the compressor.
//
// Usage:
//
//	compress [flags] in.wav out.wav
//
// With -control the parameters can be changed while the file is
// processed through a WebSocket control surface at /ws/params; combine
// it with -realtime to process at playback speed.
//
// Environment: COMP_LOG_LEVEL, COMP_CONTROL_ADDR, COMP_BLOCK_SIZE and
// COMP_REALTIME provide defaults for the matching flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cwbudde/algo-comp/dsp/params"
	"github.com/cwbudde/algo-comp/dsp/processor"
	"github.com/cwbudde/algo-comp/internal/config"
	"github.com/cwbudde/algo-comp/internal/control"
	"github.com/cwbudde/algo-comp/internal/host"
	"github.com/cwbudde/algo-comp/internal/wavio"
	"github.com/cwbudde/algo-comp/stats/level"
)

type options struct {
	params      params.ParameterSet
	ratioLabel  string
	blockSize   int
	controlAddr string
	realtime    bool
	logLevel    string
	in, out     string
}

func main() {
	opts, err := parseFlags(config.Load(), os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	setupLogging(opts.logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Error().Err(err).Msg("compress failed")
		os.Exit(1)
	}
}

func parseFlags(cfg config.Config, args []string) (options, error) {
	def := params.DefaultParameterSet()
	opts := options{params: def}

	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.Float64Var(&opts.params.ThresholdDB, "threshold", def.ThresholdDB, "threshold in dB (-60..12)")
	fs.Float64Var(&opts.params.AttackMs, "attack", def.AttackMs, "attack time in ms (5..500)")
	fs.Float64Var(&opts.params.ReleaseMs, "release", def.ReleaseMs, "release time in ms (5..500)")
	fs.StringVar(&opts.ratioLabel, "ratio", "3:1", "ratio, e.g. 4, 1.5 or 10:1")
	fs.IntVar(&opts.blockSize, "block", cfg.BlockSize, "host block size in frames")
	fs.StringVar(&opts.controlAddr, "control", cfg.ControlAddr, "listen address of the WebSocket control surface, empty to disable")
	fs.BoolVar(&opts.realtime, "realtime", cfg.Realtime, "process at playback speed")
	fs.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "zerolog level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: compress [flags] in.wav out.wav\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return options{}, fmt.Errorf("want 2 file arguments, got %d", fs.NArg())
	}
	opts.in, opts.out = fs.Arg(0), fs.Arg(1)

	ratio, err := params.ParseRatio(opts.ratioLabel)
	if err != nil {
		return options{}, err
	}
	opts.params.Ratio = ratio

	if opts.blockSize < 1 {
		return options{}, fmt.Errorf("block size must be >= 1: %d", opts.blockSize)
	}

	return opts, nil
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	lvl := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = l
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}

func run(ctx context.Context, opts options) error {
	in, err := wavio.ReadFile(opts.in)
	if err != nil {
		return err
	}

	inLevels := level.MeasureBlock(in.Block)
	log.Info().
		Str("file", opts.in).
		Int("sample_rate", in.SampleRate).
		Int("bit_depth", in.BitDepth).
		Int("channels", in.Block.NumChannels()).
		Int("frames", in.Block.NumFrames()).
		Float64("peak_db", inLevels.PeakDB).
		Float64("rms_db", inLevels.RMSDB).
		Float64("crest_db", inLevels.CrestDB).
		Msg("input loaded")

	proc := processor.New()
	proc.Params().Restore(opts.params)

	p := proc.Params().Snapshot()
	log.Info().
		Float64("threshold_db", p.ThresholdDB).
		Float64("attack_ms", p.AttackMs).
		Float64("release_ms", p.ReleaseMs).
		Float64("ratio", p.Ratio).
		Msg("parameters")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	controlDone := make(chan error, 1)
	if opts.controlAddr != "" {
		srv := control.NewServer(proc.Params(), proc)
		go func() { controlDone <- srv.ListenAndServe(runCtx, opts.controlAddr) }()
	} else {
		controlDone <- nil
	}

	stats, err := host.Run(runCtx, proc, in.Block, float64(in.SampleRate), host.Options{
		BlockSize: opts.blockSize,
		Realtime:  opts.realtime,
	})

	cancel()
	if cerr := <-controlDone; cerr != nil {
		log.Warn().Err(cerr).Msg("control surface")
	}

	if err != nil {
		return err
	}

	if err := wavio.WriteFile(opts.out, in); err != nil {
		return err
	}

	outLevels := level.MeasureBlock(in.Block)
	log.Info().
		Str("file", opts.out).
		Int("blocks", stats.Blocks).
		Float64("max_gr_db", stats.MaxGainReductionDB).
		Float64("peak_db", outLevels.PeakDB).
		Float64("rms_db", outLevels.RMSDB).
		Float64("crest_db", outLevels.CrestDB).
		Msg("output written")

	return nil
}
