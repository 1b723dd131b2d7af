// Command harmonicfx-render processes audio and a MIDI file offline through
// the harmonic exciter and writes the shaped audio and expanded MIDI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/justyntemme/harmonicfx/cmd/internal/hostconfig"
	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/param"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config     string
	midiIn     string
	wavIn      string
	out        string
	midiOut    string
	sampleRate float64
	block      int
	params     map[string]*string
	harmonics  string
	logLevel   string
	tail       float64
	bpm        float64
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("harmonicfx-render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.config, "config", "", "YAML config file")
	fs.StringVar(&o.midiIn, "midi", "", "input Standard MIDI File (default: one C4 note)")
	fs.StringVar(&o.wavIn, "in", "", "input WAV file (default: a sine at the lowest note played)")
	fs.StringVar(&o.out, "out", "harmonicfx.wav", "output WAV file")
	fs.StringVar(&o.midiOut, "midi-out", "", "write the expanded MIDI stream to this file")
	fs.Float64Var(&o.sampleRate, "sample-rate", 0, "sample rate in Hz (default: input WAV or config)")
	fs.IntVar(&o.block, "block", 0, "block size in frames (default: config)")
	o.params = map[string]*string{
		"gain":       fs.String("gain", "", `output gain, e.g. "50%"`),
		"pan":        fs.String("pan", "", `stereo position, e.g. "C" or "30L"`),
		"distortion": fs.String("distortion", "", "distortion type: none, tanh or sigmoid"),
		"bypass":     fs.String("bypass", "", "bypass audio shaping: on or off"),
	}
	fs.StringVar(&o.harmonics, "harmonics", "", "comma separated harmonic amplitudes 0-100, fundamental first")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn, error or off")
	fs.Float64Var(&o.tail, "tail", 1, "seconds rendered after the last MIDI event")
	fs.Float64Var(&o.bpm, "bpm", midi.DefaultBPM, "tempo of the written MIDI file")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func run(args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := hostconfig.Load(o.config)
	if err != nil {
		return err
	}

	var input pcm
	if o.wavIn != "" {
		if input, err = readWAV(o.wavIn); err != nil {
			return err
		}
		cfg.SampleRate = float64(input.SampleRate)
	}
	if o.sampleRate > 0 {
		cfg.SampleRate = o.sampleRate
	}
	if o.block > 0 {
		cfg.BlockSize = o.block
	}
	for name, v := range o.params {
		if *v != "" {
			cfg.SetParam(name, *v)
		}
	}
	if o.harmonics != "" {
		if cfg.Harmonics, err = hostconfig.ParseHarmonics(o.harmonics); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.ConfigureLogging(); err != nil {
		return err
	}
	debug.SetOutput(stderr)
	log := debug.Default().With("render")

	if rate := int(cfg.SampleRate); input.Channels > 0 && input.SampleRate != rate {
		log.Info("resampling %s from %d Hz to %d Hz", o.wavIn, input.SampleRate, rate)
		if input, err = resample(input, rate); err != nil {
			return err
		}
	}

	p, err := cfg.NewProcessor()
	if err != nil {
		return err
	}
	snap := p.Snapshot()
	log.Info("gain %.2f, pan %.2f, distortion %s, bypass %t", snap.Gain, snap.Pan, snap.Distortion, snap.Bypass)

	tl := defaultTimeline(cfg.SampleRate)
	if o.midiIn != "" {
		if tl, err = midi.ReadFile(o.midiIn, cfg.SampleRate); err != nil {
			return err
		}
		log.Info("loaded %d events from %s", len(tl), o.midiIn)
	}

	frames := int(tl.End()) + int(o.tail*cfg.SampleRate)
	if input.Channels == 0 {
		note := lowestNote(tl)
		input = sine(midi.NoteToFrequency(note, 440), int(cfg.SampleRate), frames)
		log.Debug("generated %s test tone", midi.NoteNumberToName(note))
	} else if input.Frames() > frames {
		frames = input.Frames()
	}

	res := render(p, input, tl, frames, cfg.BlockSize, cfg.Channels)

	if err := writeWAV(o.out, res.Audio); err != nil {
		return err
	}
	log.Info("wrote %s (%d frames, %d channels)", o.out, frames, cfg.Channels)

	if o.midiOut != "" {
		if err := midi.WriteFile(o.midiOut, res.Events, cfg.SampleRate, o.bpm); err != nil {
			return err
		}
		log.Info("wrote %s (%d events)", o.midiOut, len(res.Events))
	}

	stats := p.Stats()
	log.Info("output level %s, meter %s, %d notes still active",
		param.DecibelFormatter(float64(p.OutputLevelLeft())), p.MeterState(), p.ActiveNoteCount())
	log.Info("block timing: %d blocks, avg %v, max %v, worst load %.1f%%, %d overruns",
		res.Timing.Blocks, res.Timing.Average(), res.Timing.Max, res.Timing.WorstLoad*100, res.Timing.Overruns)
	log.Debug("%s", res.Timing.Report(cfg.SampleRate))
	if res.InputDropped > 0 {
		log.Warn("%d timeline events did not fit max_events (%d) and were dropped", res.InputDropped, cfg.Processor.MaxEvents)
	}
	if stats.DroppedEvents > 0 || stats.UntrackedNotes > 0 || stats.SkippedBlocks > 0 {
		log.Warn("dropped %d harmonic events, %d untracked notes, %d skipped blocks",
			stats.DroppedEvents, stats.UntrackedNotes, stats.SkippedBlocks)
	}
	res.Signal.Log(log, "output")
	return nil
}
