package harmonizer

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/justyntemme/harmonicfx/pkg/dsp/distortion"
	"github.com/justyntemme/harmonicfx/pkg/dsp/gain"
	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/process"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

func newTestProcessor(t testing.TB, cfg Config) *Processor {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.SetLogger(debug.New(&bytes.Buffer{}, "test", 0))
	return p
}

func prepared(t testing.TB, sampleRate float64, block, inputs, outputs int) (*Processor, *process.Context) {
	t.Helper()
	p := newTestProcessor(t, DefaultConfig())
	if err := p.Prepare(sampleRate, block, inputs, outputs); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	return p, process.NewContext(sampleRate, block, inputs, outputs, p.Config().MaxEvents)
}

func fill(ctx *process.Context, v float32) {
	for ch := range ctx.Audio {
		for i := range ctx.Audio[ch] {
			ctx.Audio[ch][i] = v
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 0
	if _, err := New(cfg); err == nil {
		t.Error("Expected config error")
	}
}

func TestProcessorDefaults(t *testing.T) {
	p := newTestProcessor(t, DefaultConfig())

	if p.Snapshot() != DefaultSnapshot {
		t.Errorf("Snapshot() = %+v, want %+v", p.Snapshot(), DefaultSnapshot)
	}
	if !p.HarmonicEnabled() {
		t.Error("Harmonics should default to enabled")
	}
	if p.RootNote() != 60 {
		t.Errorf("RootNote() = %d, want 60", p.RootNote())
	}
	if p.OutputLevelLeft() != gain.MinDB {
		t.Errorf("OutputLevelLeft() = %g, want floor", p.OutputLevelLeft())
	}
	if p.MeterState() != MeterUninitialized {
		t.Errorf("MeterState() = %v", p.MeterState())
	}
	if n := len(p.Parameters().All()); n != 4 {
		t.Errorf("Expected 4 parameters, got %d", n)
	}
	if err := p.Info().Validate(); err != nil {
		t.Errorf("Info invalid: %v", err)
	}
}

func TestProcessorPrepareErrors(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		block      int
		inputs     int
		outputs    int
		want       error
	}{
		{"ZeroRate", 0, 512, 2, 2, ErrInvalidSampleRate},
		{"NaNRate", math.NaN(), 512, 2, 2, ErrInvalidSampleRate},
		{"InfRate", math.Inf(1), 512, 2, 2, ErrInvalidSampleRate},
		{"ZeroBlock", 48000, 0, 2, 2, ErrInvalidBlockSize},
		{"NoOutputs", 48000, 512, 2, 0, ErrInvalidChannels},
		{"NegativeInputs", 48000, 512, -1, 2, ErrInvalidChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t, DefaultConfig())
			err := p.Prepare(tt.sampleRate, tt.block, tt.inputs, tt.outputs)
			if !errors.Is(err, tt.want) {
				t.Errorf("Prepare() error = %v, want %v", err, tt.want)
			}
			if p.MeterState() != MeterUninitialized {
				t.Error("A failed Prepare should not prepare the meter")
			}
		})
	}
}

func TestProcessorScenario(t *testing.T) {
	p, ctx := prepared(t, 48000, 512, 2, 2)
	p.SetHarmonicValues([]float32{0, 50, 30})

	ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
	ctx.Events.Add(midi.NoteOff(0, 60, 0, 480))
	p.Process(ctx)

	want := []midi.Event{
		midi.NoteOn(0, 60, 100, 0),
		midi.NoteOn(0, 72, 50, 0),
		midi.NoteOn(0, 79, 30, 0),
		midi.NoteOff(0, 60, 0, 480),
		midi.NoteOff(0, 72, 0, 480),
		midi.NoteOff(0, 79, 0, 480),
	}
	got := ctx.Events.Events()
	if len(got) != len(want) {
		t.Fatalf("Got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if p.ActiveNoteCount() != 0 {
		t.Errorf("ActiveNoteCount() = %d, want 0", p.ActiveNoteCount())
	}
}

func TestProcessorMonoGain(t *testing.T) {
	p, ctx := prepared(t, 48000, 256, 1, 1)
	p.Parameters().Get(ParamGain).SetPlainValue(0.5)

	fill(ctx, 1)
	p.Process(ctx)

	for i, v := range ctx.Audio[0] {
		if v != 0.5 {
			t.Fatalf("Sample %d = %g, want 0.5", i, v)
		}
	}
	if p.MeterState() != MeterRunning {
		t.Errorf("MeterState() = %v, want running", p.MeterState())
	}
}

func TestProcessorBypassIsBitExact(t *testing.T) {
	p, ctx := prepared(t, 48000, 128, 2, 2)
	p.Parameters().Get(ParamBypass).SetBool(true)
	p.Parameters().Get(ParamGain).SetPlainValue(0.1)
	p.Parameters().Get(ParamDistortion).SetIndex(int(distortion.Sigmoid))
	p.SetHarmonicValues([]float32{0, 100})

	rng := rand.New(rand.NewSource(7))
	want := make([][]float32, 2)
	for ch := range ctx.Audio {
		for i := range ctx.Audio[ch] {
			ctx.Audio[ch][i] = math.Float32frombits(rng.Uint32() &^ 0x40000000) // finite values of any sign
		}
		want[ch] = append([]float32(nil), ctx.Audio[ch]...)
	}
	ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))

	p.Process(ctx)

	for ch := range want {
		for i := range want[ch] {
			if math.Float32bits(ctx.Audio[ch][i]) != math.Float32bits(want[ch][i]) {
				t.Fatalf("Bypass changed channel %d sample %d", ch, i)
			}
		}
	}
	// Harmonic expansion still runs while bypassed.
	if ctx.Events.Len() != 2 {
		t.Errorf("Expected the harmonic Note-On while bypassed, got %v", ctx.Events.Events())
	}
}

func TestProcessorMeterStaleWhileBypassed(t *testing.T) {
	p, ctx := prepared(t, 48000, 512, 2, 2)

	for i := 0; i < 50; i++ {
		fill(ctx, 0.5)
		p.Process(ctx)
	}
	level := p.OutputLevelLeft()
	if level <= gain.MinDB {
		t.Fatalf("Meter should have risen, got %g", level)
	}

	p.Parameters().Get(ParamBypass).SetBool(true)
	for i := 0; i < 10; i++ {
		fill(ctx, 0)
		p.Process(ctx)
	}
	if p.OutputLevelLeft() != level {
		t.Errorf("Meter moved while bypassed: %g -> %g", level, p.OutputLevelLeft())
	}
}

func TestProcessorClearsExtraOutputs(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 1, 2)
	fill(ctx, 1)
	p.Process(ctx)

	for i, v := range ctx.Audio[1] {
		if v != 0 {
			t.Fatalf("Output-only channel sample %d = %g, want 0", i, v)
		}
	}
	// Centre pan on the input channel.
	if math.Abs(float64(ctx.Audio[0][0])-math.Sqrt2/2) > 1e-6 {
		t.Errorf("Channel 0 = %g", ctx.Audio[0][0])
	}
}

func TestProcessorHarmonicsDisabled(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 2, 2)
	p.SetHarmonicValues([]float32{0, 100})
	p.SetHarmonicEnabled(false)
	if p.HarmonicEnabled() {
		t.Fatal("HarmonicEnabled should be false")
	}

	ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
	p.Process(ctx)

	if ctx.Events.Len() != 1 {
		t.Errorf("Events should pass through, got %v", ctx.Events.Events())
	}
}

func TestProcessorSkipsUnhandledBlocks(t *testing.T) {
	p := newTestProcessor(t, DefaultConfig())
	ctx := process.NewContext(48000, 64, 1, 1, p.Config().MaxEvents)
	fill(ctx, 1)

	if err := p.CheckBlock(ctx); !errors.Is(err, ErrNotPrepared) {
		t.Errorf("CheckBlock() = %v, want ErrNotPrepared", err)
	}
	p.Process(ctx)
	if ctx.Audio[0][0] != 1 || p.Stats().SkippedBlocks != 1 {
		t.Error("Unprepared processor should pass the block through")
	}

	if err := p.Prepare(48000, 32, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.CheckBlock(ctx); !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("CheckBlock() = %v, want ErrBlockTooLarge", err)
	}
	p.Parameters().Get(ParamGain).SetPlainValue(0)
	p.Process(ctx)
	if ctx.Audio[0][0] != 1 || p.Stats().SkippedBlocks != 2 {
		t.Error("Oversized block should pass through")
	}

	ctx.SetBlockSize(32)
	if err := p.CheckBlock(ctx); err != nil {
		t.Errorf("CheckBlock() = %v", err)
	}
	p.Process(ctx)
	if ctx.Audio[0][0] != 0 {
		t.Error("A fitting block should be processed")
	}
}

func TestProcessorPrepareResetsMeter(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 1, 1)
	fill(ctx, 1)
	p.Process(ctx)
	if p.MeterState() != MeterRunning {
		t.Fatal("Meter should be running")
	}

	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"SameGeometry", 48000},
		{"NewSampleRate", 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fill(ctx, 1)
			p.Process(ctx)

			if err := p.Prepare(tt.sampleRate, 64, 1, 1); err != nil {
				t.Fatal(err)
			}
			if p.MeterState() != MeterPrepared {
				t.Errorf("MeterState() = %v, want prepared", p.MeterState())
			}

			// A silent block after a reset reads the floor, not a decay of
			// the earlier signal.
			fill(ctx, 0)
			p.Process(ctx)
			if p.OutputLevelLeft() != gain.MinDB {
				t.Errorf("Level after Prepare and silence = %g, want %g", p.OutputLevelLeft(), gain.MinDB)
			}
		})
	}
}

func TestProcessorEventCapacityMismatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 8
	p := newTestProcessor(t, cfg)
	if err := p.Prepare(48000, 64, 1, 1); err != nil {
		t.Fatal(err)
	}
	p.SetHarmonicValues([]float32{0, 50})

	tests := []struct {
		name     string
		capacity int
		events   int
	}{
		{"LargerThanConfigured", 32, 12},
		{"SmallerThanConfigured", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := process.NewContext(48000, 64, 1, 1, tt.capacity)
			for i := 0; i < tt.events; i++ {
				ctx.Events.Add(midi.ControlChange(0, midi.CCModWheel, uint8(i), int32(i)))
			}
			fill(ctx, 1)
			p.Parameters().Get(ParamGain).SetPlainValue(0)
			before := p.Stats().SkippedBlocks

			if err := p.CheckBlock(ctx); !errors.Is(err, ErrEventCapacity) {
				t.Errorf("CheckBlock() = %v, want ErrEventCapacity", err)
			}
			p.Process(ctx)

			if ctx.Events.Len() != tt.events || ctx.Events.Cap() != tt.capacity {
				t.Errorf("Events changed: %d of %d, want %d of %d", ctx.Events.Len(), ctx.Events.Cap(), tt.events, tt.capacity)
			}
			if ctx.Audio[0][0] != 1 {
				t.Error("Block should pass through unprocessed")
			}
			if p.Stats().SkippedBlocks != before+1 {
				t.Errorf("SkippedBlocks = %d, want %d", p.Stats().SkippedBlocks, before+1)
			}
		})
	}
}

func TestProcessorKeepsEventCapacity(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 1, 1)
	p.SetHarmonicValues([]float32{0, 50})

	for block := 0; block < 3; block++ {
		ctx.Events.Clear()
		ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
		ctx.Events.Add(midi.NoteOff(0, 60, 0, 10))
		p.Process(ctx)

		if ctx.Events.Cap() != p.Config().MaxEvents {
			t.Fatalf("Block %d: event capacity %d, want %d", block, ctx.Events.Cap(), p.Config().MaxEvents)
		}
		if ctx.Events.Len() != 4 {
			t.Fatalf("Block %d: got %v, want 4 events", block, ctx.Events.Events())
		}
	}
}

func TestProcessorSortsEvents(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 1, 1)
	p.SetHarmonicValues([]float32{0, 50})

	ctx.Events.Add(midi.NoteOff(0, 60, 0, 20))
	ctx.Events.Add(midi.NoteOn(0, 60, 100, 5))
	p.Process(ctx)

	want := []midi.Event{
		midi.NoteOn(0, 60, 100, 5),
		midi.NoteOn(0, 72, 50, 5),
		midi.NoteOff(0, 60, 0, 20),
		midi.NoteOff(0, 72, 0, 20),
	}
	got := ctx.Events.Events()
	if len(got) != len(want) {
		t.Fatalf("Got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if p.ActiveNoteCount() != 0 {
		t.Errorf("ActiveNoteCount() = %d, want 0", p.ActiveNoteCount())
	}
}

func TestProcessorRootNote(t *testing.T) {
	p := newTestProcessor(t, DefaultConfig())
	tests := []struct{ in, want int }{{64, 64}, {-5, 0}, {300, 127}}
	for _, tt := range tests {
		p.SetRootNote(tt.in)
		if p.RootNote() != tt.want {
			t.Errorf("SetRootNote(%d) -> %d, want %d", tt.in, p.RootNote(), tt.want)
		}
	}
}

func TestProcessorActiveNotesAndReset(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 2, 2)
	p.SetHarmonicValues([]float32{0, 50})

	ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
	ctx.Events.Add(midi.NoteOn(0, 64, 100, 1))
	p.Process(ctx)
	if p.ActiveNoteCount() != 2 {
		t.Errorf("ActiveNoteCount() = %d, want 2", p.ActiveNoteCount())
	}

	p.Reset()
	if p.ActiveNoteCount() != 0 {
		t.Errorf("Reset should clear notes, got %d", p.ActiveNoteCount())
	}

	ctx.Events.Clear()
	ctx.Events.Add(midi.NoteOff(0, 60, 0, 0))
	p.Process(ctx)
	if ctx.Events.Len() != 1 {
		t.Errorf("Note-Off after Reset should emit nothing extra, got %v", ctx.Events.Events())
	}
}

func TestProcessorStats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 2
	p := newTestProcessor(t, cfg)
	if err := p.Prepare(48000, 64, 1, 1); err != nil {
		t.Fatal(err)
	}
	ctx := process.NewContext(48000, 64, 1, 1, cfg.MaxEvents)
	p.SetHarmonicValues([]float32{0, 50, 50, 50})

	ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
	p.Process(ctx)

	if ctx.Events.Len() != 2 {
		t.Errorf("Expected the original and one harmonic, got %v", ctx.Events.Events())
	}
	if p.Stats().DroppedEvents != 2 {
		t.Errorf("DroppedEvents = %d, want 2", p.Stats().DroppedEvents)
	}
}

func TestProcessorHarmonicValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTableSize = 2
	p := newTestProcessor(t, cfg)

	var logs bytes.Buffer
	p.SetLogger(debug.New(&logs, "", debug.FlagLevel))
	p.SetHarmonicValues([]float32{0, 20, 40})

	if got := p.HarmonicValues(); len(got) != 3 || got[2] != 40 {
		t.Errorf("HarmonicValues() = %v", got)
	}
	if !bytes.Contains(logs.Bytes(), []byte("[WARN]")) {
		t.Error("Oversized table should log a warning")
	}
}

func TestProcessorDoesNotAllocate(t *testing.T) {
	p, ctx := prepared(t, 48000, 256, 2, 2)
	p.SetHarmonicValues([]float32{0, 50, 30, 20})
	p.Parameters().Get(ParamDistortion).SetIndex(int(distortion.Tanh))

	allocs := testing.AllocsPerRun(100, func() {
		ctx.Events.Clear()
		ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
		ctx.Events.Add(midi.NoteOff(0, 60, 0, 128))
		fill(ctx, 0.25)
		p.Process(ctx)
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations, got %f", allocs)
	}
}

func TestProcessorConcurrentControl(t *testing.T) {
	p, ctx := prepared(t, 48000, 64, 2, 2)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			p.SetHarmonicValues([]float32{0, float32(i % 100), 30})
			p.Parameters().Get(ParamPan).SetValue(float64(i%10) / 10)
			p.SetHarmonicEnabled(i%3 != 0)
			_ = p.OutputLevelLeft()
			_ = p.ActiveNoteCount()
		}
	}()

	for i := 0; i < 500; i++ {
		ctx.Events.Clear()
		ctx.Events.Add(midi.NoteOn(0, uint8(40+i%12), 90, 0))
		ctx.Events.Add(midi.NoteOff(0, uint8(40+(i+6)%12), 0, 32))
		fill(ctx, 0.1)
		p.Process(ctx)
	}
	close(done)
	wg.Wait()
}

func BenchmarkProcess(b *testing.B) {
	p, ctx := prepared(b, 48000, 512, 2, 2)
	p.SetHarmonicValues([]float32{0, 50, 30, 20, 10})
	p.Parameters().Get(ParamDistortion).SetIndex(int(distortion.Tanh))
	fill(ctx, 0.25)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ctx.Events.Clear()
		ctx.Events.Add(midi.NoteOn(0, 60, 100, 0))
		ctx.Events.Add(midi.NoteOff(0, 60, 0, 256))
		p.Process(ctx)
	}
}
