//go:build !headless

// Command harmonicfx-play runs the harmonic exciter live: MIDI from an input
// port is expanded and forwarded to an output port while a test tone at the
// root note is shaped and played through the default audio device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/harmonicfx/cmd/internal/hostconfig"
	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/param"
	"github.com/justyntemme/harmonicfx/pkg/harmonizer"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("harmonicfx-play", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	list := fs.Bool("list", false, "list MIDI ports and exit")
	inHint := fs.String("port", "", "MIDI input port name fragment")
	outHint := fs.String("out-port", "", "MIDI output port name fragment for the expanded stream")
	sampleRate := fs.Float64("sample-rate", 0, "sample rate in Hz (default: config)")
	block := fs.Int("block", 0, "block size in frames (default: config)")
	harmonics := fs.String("harmonics", "", "comma separated harmonic amplitudes 0-100, fundamental first")
	root := fs.String("root", "", `root note of the test tone, e.g. "A3" or 57 (default: config)`)
	toneLevel := fs.Float64("tone-level", 0.2, "test tone amplitude, 0 for silence")
	latency := fs.Duration("latency", 20*time.Millisecond, "audio device buffer")
	interval := fs.Duration("meter-interval", 100*time.Millisecond, "meter polling interval")
	logLevel := fs.String("log-level", "", "debug, info, warn, error or off")
	params := map[string]*string{
		"gain":       fs.String("gain", "", `output gain, e.g. "50%"`),
		"pan":        fs.String("pan", "", `stereo position, e.g. "C" or "30L"`),
		"distortion": fs.String("distortion", "", "distortion type: none, tanh or sigmoid"),
		"bypass":     fs.String("bypass", "", "bypass audio shaping: on or off"),
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("meter-interval must be positive, got %v", *interval)
	}
	defer gomidi.CloseDriver()

	if *list {
		fmt.Println("MIDI inputs:")
		fmt.Print(gomidi.GetInPorts().String())
		fmt.Println("MIDI outputs:")
		fmt.Print(gomidi.GetOutPorts().String())
		return nil
	}

	cfg, err := hostconfig.Load(*configPath)
	if err != nil {
		return err
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	if *block > 0 {
		cfg.BlockSize = *block
	}
	for name, v := range params {
		if *v != "" {
			cfg.SetParam(name, *v)
		}
	}
	if *harmonics != "" {
		if cfg.Harmonics, err = hostconfig.ParseHarmonics(*harmonics); err != nil {
			return err
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ConfigureLogging(); err != nil {
		return err
	}
	log := debug.Default().With("play")

	p, err := cfg.NewProcessor()
	if err != nil {
		return err
	}
	if *root != "" {
		note, err := hostconfig.ParseNote(*root)
		if err != nil {
			return err
		}
		p.SetRootNote(note)
	}
	eng := newEngine(p, cfg.Channels, cfg.BlockSize, float32(*toneLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *inHint != "" {
		stopListening, err := listen(*inHint, eng, log)
		if err != nil {
			return err
		}
		defer stopListening()
	}

	var send func(gomidi.Message) error
	if *outHint != "" {
		if send, err = openOutput(*outHint, log); err != nil {
			return err
		}
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   *latency,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(eng)
	player.Play()
	defer player.Close()
	log.Info("playing at %.0f Hz, %d frames per block, root %s; Ctrl-C to stop",
		cfg.SampleRate, cfg.BlockSize, midi.NoteNumberToName(uint8(p.RootNote())))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		forward(gctx, eng, send, log)
		return nil
	})
	g.Go(func() error {
		return poll(gctx, player, p, *interval, log)
	})
	err = g.Wait()

	t := eng.Timing()
	in, out := eng.Dropped()
	log.Info("stopped after %d blocks, worst load %.1f%%, %d overruns", t.Blocks, t.WorstLoad*100, t.Overruns)
	log.Debug("%s", t.Report(cfg.SampleRate))
	if in > 0 || out > 0 {
		log.Warn("dropped %d incoming and %d outgoing events", in, out)
	}
	return err
}

// poll reads the meter on the UI cadence until ctx ends or the audio device
// fails.
func poll(ctx context.Context, player *oto.Player, p *harmonizer.Processor, interval time.Duration, log *debug.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := player.Err(); err != nil {
				return fmt.Errorf("audio device: %w", err)
			}
			log.Debug("level %s, meter %s, %d notes",
				param.DecibelFormatter(float64(p.OutputLevelLeft())), p.MeterState(), p.ActiveNoteCount())
		}
	}
}

func listen(hint string, eng *engine, log *debug.Logger) (func(), error) {
	ins := gomidi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx, err := findPort("input", names, hint)
	if err != nil {
		return nil, err
	}
	in := ins[idx]

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		if ev, ok := midi.Decode(msg, 0); ok {
			eng.Send(ev)
		}
	}, gomidi.HandleError(func(err error) {
		log.Warn("MIDI input %s: %v", in, err)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", in, err)
	}
	log.Info("listening on %s", in)
	return stop, nil
}

func openOutput(hint string, log *debug.Logger) (func(gomidi.Message) error, error) {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	idx, err := findPort("output", names, hint)
	if err != nil {
		return nil, err
	}
	out := outs[idx]

	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", out, err)
	}
	log.Info("sending expanded MIDI to %s", out)
	return send, nil
}

// forward sends the expanded stream to send, or logs it when there is no
// output port.
func forward(ctx context.Context, eng *engine, send func(gomidi.Message) error, log *debug.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eng.Output():
			if send == nil {
				log.Debug("%v", ev)
				continue
			}
			if msg := midi.Encode(ev); msg != nil {
				if err := send(msg); err != nil {
					log.Warn("MIDI output: %v", err)
				}
			}
		}
	}
}
