package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/justyntemme/harmonicfx/cmd/internal/hostconfig"
	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

func newTestEngine(t testing.TB, block int, harmonics []float32, toneLevel float32) *engine {
	t.Helper()
	debug.SetLevel(debug.LogLevelOff)
	t.Cleanup(func() { debug.SetLevel(debug.LogLevelInfo) })

	cfg := hostconfig.Default()
	cfg.BlockSize = block
	cfg.Harmonics = harmonics
	p, err := cfg.NewProcessor()
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return newEngine(p, cfg.Channels, block, toneLevel)
}

func samples(b []byte) []float32 {
	out := make([]float32, len(b)/bytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*bytesPerSample:]))
	}
	return out
}

func TestEngineExpandsLiveEvents(t *testing.T) {
	eng := newTestEngine(t, 64, []float32{0, 50, 30}, 0.2)

	if !eng.Send(midi.NoteOn(0, 60, 100, 17)) {
		t.Fatal("Send should accept the event")
	}
	buf := make([]byte, 64*2*bytesPerSample)
	if n, err := eng.Read(buf); n != len(buf) || err != nil {
		t.Fatalf("Read() = %d, %v", n, err)
	}

	want := []midi.Event{
		midi.NoteOn(0, 60, 100, 0),
		midi.NoteOn(0, 72, 50, 0),
		midi.NoteOn(0, 79, 30, 0),
	}
	for i, w := range want {
		select {
		case got := <-eng.Output():
			if got != w {
				t.Errorf("Event %d = %v, want %v", i, got, w)
			}
		default:
			t.Fatalf("Missing event %d", i)
		}
	}
	if eng.proc.ActiveNoteCount() != 1 {
		t.Errorf("ActiveNoteCount() = %d, want 1", eng.proc.ActiveNoteCount())
	}
}

func TestEngineRendersTone(t *testing.T) {
	eng := newTestEngine(t, 32, nil, 0.5)

	buf := make([]byte, 32*2*bytesPerSample)
	eng.Read(buf)
	out := samples(buf)

	if out[0] != 0 {
		t.Errorf("Tone should start at zero phase, got %g", out[0])
	}
	var peak float32
	for i := 0; i < len(out); i += 2 {
		if out[i] != out[i+1] {
			t.Fatalf("Frame %d: centre pan should match sides, got %g/%g", i/2, out[i], out[i+1])
		}
		peak = max(peak, float32(math.Abs(float64(out[i]))))
	}
	if peak == 0 || peak > 0.5 {
		t.Errorf("Peak = %g, want within (0, 0.5]", peak)
	}
}

func TestEngineChunkSizesDoNotMatter(t *testing.T) {
	a := newTestEngine(t, 48, nil, 0.3)
	b := newTestEngine(t, 48, nil, 0.3)

	whole := make([]byte, 1000*bytesPerSample)
	a.Read(whole)

	var pieces []byte
	for _, size := range []int{4, 100, 1, 3, 500, 1392, 2000} {
		chunk := make([]byte, size)
		b.Read(chunk)
		pieces = append(pieces, chunk...)
	}

	if !bytes.Equal(whole, pieces[:len(whole)]) {
		t.Error("Chunked reads should produce the same stream")
	}
}

func TestEngineSendDropsWhenFull(t *testing.T) {
	eng := newTestEngine(t, 16, nil, 0)
	queue := cap(eng.in)

	for i := 0; i < queue; i++ {
		if !eng.Send(midi.NoteOn(0, 60, 100, 0)) {
			t.Fatalf("Send %d rejected", i)
		}
	}
	if eng.Send(midi.NoteOn(0, 61, 100, 0)) {
		t.Error("Send should reject when the queue is full")
	}
	if in, _ := eng.Dropped(); in != 1 {
		t.Errorf("Dropped() in = %d, want 1", in)
	}
}

func TestEngineTiming(t *testing.T) {
	eng := newTestEngine(t, 64, nil, 0.1)
	eng.Read(make([]byte, 3*64*2*bytesPerSample))

	if got := eng.Timing().Blocks; got != 3 {
		t.Errorf("Timing().Blocks = %d, want 3", got)
	}
}

func TestEngineReadDoesNotAllocate(t *testing.T) {
	eng := newTestEngine(t, 128, []float32{0, 50}, 0.2)
	buf := make([]byte, 128*2*bytesPerSample)

	allocs := testing.AllocsPerRun(50, func() {
		eng.Send(midi.NoteOn(0, 60, 100, 0))
		eng.Send(midi.NoteOff(0, 60, 0, 0))
		eng.Read(buf)
		for len(eng.out) > 0 {
			<-eng.out
		}
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations, got %f", allocs)
	}
}

func TestFindPort(t *testing.T) {
	names := []string{"Midi Through:0", "Blofeld:MIDI 1", "USB Keys"}

	tests := []struct {
		hint    string
		want    int
		wantErr bool
	}{
		{"blofeld", 1, false},
		{"usb", 2, false},
		{"midi", 0, false},
		{"launchpad", -1, true},
	}
	for _, tt := range tests {
		got, err := findPort("input", names, tt.hint)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("findPort(%q) = %d, %v", tt.hint, got, err)
		}
	}

	if _, err := findPort("output", nil, "x"); err == nil {
		t.Error("Expected error with no ports")
	}
}
