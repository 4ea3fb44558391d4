// Command dattorro renders a WAV file through the plate reverb.
//
// Usage:
//
//	dattorro [flags] input.wav
//
// The input may be mono or stereo PCM. The output is 16-bit stereo at the
// input sample rate with the reverb tail appended, written next to the
// input as <name>_reverb.wav unless -o is given.
//
// Examples:
//
//	dattorro drums.wav
//	dattorro -size 2 -wet -1 -tail 6 vocals.wav
//	dattorro -decay 0.9 -damping 0.3 -o out.wav ~/samples/snare.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/cwbudde/algo-dattorro/dsp/core"
	"github.com/cwbudde/algo-dattorro/dsp/effects/reverb"
	"github.com/cwbudde/algo-dattorro/dsp/interp"
	"github.com/cwbudde/algo-dattorro/measure/tail"
)

var paramUsage = map[reverb.Param]string{
	reverb.ParamPreDelay:        "predelay in seconds",
	reverb.ParamBandwidth:       "input bandwidth in Hz (default Nyquist)",
	reverb.ParamDamping:         "loop damping 0..1",
	reverb.ParamDecay:           "loop decay 0..1",
	reverb.ParamDiffusion1:      "decay diffusion 1, 0..1",
	reverb.ParamDiffusion2:      "decay diffusion 2, 0..1",
	reverb.ParamInputDiffusion1: "input diffusion 1, 0..1",
	reverb.ParamInputDiffusion2: "input diffusion 2, 0..1",
	reverb.ParamModulation:      "LFO depth 0..1",
	reverb.ParamSize:            "size factor",
	reverb.ParamWet:             "wet level in dB",
	reverb.ParamDry:             "dry level in dB",
}

type options struct {
	input   string
	output  string
	tail    float64
	block   int
	mode    interp.Mode
	verbose bool
	params  map[reverb.Param]*float64
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "dattorro:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	in, err := readWAV(opts.input)
	if err != nil {
		return err
	}
	logger.Debug("decoded wav file",
		"path", opts.input,
		"sampleRate", in.sampleRate,
		"nchannels", in.channels,
		"nframes", in.frames(),
	)

	tank, err := reverb.NewDattorro(in.sampleRate,
		reverb.WithParams(opts.tankParams(in.sampleRate)),
		reverb.WithInterpolation(opts.mode),
	)
	if err != nil {
		return err
	}
	logger.Debug("tank ready",
		"lines", tank.LineLengths(),
		"predelay", tank.PreDelayLength(),
		"interpolation", tank.Interpolation(),
	)

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(in.sampleRate)),
		core.WithBlockSize(opts.block),
		core.WithChannels(2),
	)

	out := render(tank, in, int(math.Round(opts.tail*cfg.SampleRate)), cfg.BlockSamples())
	if err := writeWAV(opts.output, out); err != nil {
		return err
	}
	logger.Info("rendered",
		"path", opts.output,
		"frames", out.frames(),
		"seconds", float64(out.frames())/cfg.SampleRate,
	)

	return summarize(logger, out, in.frames())
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("dattorro", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{params: make(map[reverb.Param]*float64)}
	fs.StringVar(&opts.output, "o", "", "output path (default <input>_reverb.wav)")
	fs.Float64Var(&opts.tail, "tail", 10, "seconds of tail appended after the input")
	fs.IntVar(&opts.block, "block", core.DefaultProcessorConfig().BlockSize, "processing block size in frames")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	mode := fs.String("interp", interp.Allpass.String(), "interpolation of the modulated lines (none, linear, allpass)")

	defaults := reverb.DefaultParams(0)
	for _, kind := range reverb.AllParams() {
		def := defaults.Value(kind)
		if kind == reverb.ParamBandwidth {
			def = math.NaN()
		}
		opts.params[kind] = fs.Float64(kind.String(), def, paramUsage[kind])
	}

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dattorro [flags] input.wav\n\n")
		fmt.Fprintf(stderr, "Renders a WAV file through a Dattorro plate reverb.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one input file")
	}

	var err error
	if opts.mode, err = interp.ParseMode(*mode); err != nil {
		return nil, err
	}
	if opts.tail < 0 || math.IsNaN(opts.tail) {
		return nil, fmt.Errorf("tail must be >= 0: %v", opts.tail)
	}

	if opts.input, err = homedir.Expand(fs.Arg(0)); err != nil {
		return nil, err
	}
	if opts.output == "" {
		opts.output = defaultOutput(opts.input)
	} else if opts.output, err = homedir.Expand(opts.output); err != nil {
		return nil, err
	}

	return opts, nil
}

// tankParams resolves the flag values for sampleRate. An unset bandwidth
// means the Nyquist frequency.
func (o *options) tankParams(sampleRate int) reverb.Params {
	p := reverb.DefaultParams(sampleRate)
	for kind, v := range o.params {
		if kind == reverb.ParamBandwidth && math.IsNaN(*v) {
			continue
		}
		p.Set(kind, *v)
	}
	return p
}

func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_reverb.wav"
}

// render mixes in through tank block by block and appends tailFrames of
// decay. The result is always stereo.
func render(tank *reverb.Dattorro, in *clip, tailFrames, blockSamples int) *clip {
	frames := in.frames() + tailFrames
	out := &clip{
		sampleRate: in.sampleRate,
		channels:   2,
		samples:    make([]float64, 2*frames),
	}

	for i := range in.frames() {
		l := in.samples[i*in.channels]
		r := l
		if in.channels == 2 {
			r = in.samples[i*2+1]
		}
		out.samples[2*i], out.samples[2*i+1] = l, r
	}

	for start := 0; start < len(out.samples); start += blockSamples {
		tank.ProcessStereoInterleavedInPlace(out.samples[start:min(start+blockSamples, len(out.samples))])
	}

	return out
}

// summarize logs a tail analysis of everything after the input ends.
func summarize(logger *slog.Logger, out *clip, inputFrames int) error {
	if out.frames() <= inputFrames {
		return nil
	}

	stereo := out.samples[2*inputFrames:]
	l := make([]float64, len(stereo)/2)
	r := make([]float64, len(stereo)/2)
	for i := range l {
		l[i], r[i] = stereo[2*i], stereo[2*i+1]
	}

	rep, err := tail.NewAnalyzer(float64(out.sampleRate)).Analyze(l, r)
	if err != nil {
		return err
	}

	logger.Info("tail",
		"rt60", rep.RT60,
		"correlation", rep.Correlation,
		"peak", rep.Peak,
		"peakDBFS", core.LinearToDB(rep.Peak),
		"earlyCentroid", rep.EarlyCentroid,
		"lateCentroid", rep.LateCentroid,
	)
	logger.Debug("tail envelope", "windowRMS", rep.WindowRMS)

	return nil
}
