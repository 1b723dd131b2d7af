package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/process"
	"github.com/justyntemme/harmonicfx/pkg/harmonizer"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

const bytesPerSample = 4

// engine drives the processor from an audio device's pull callback. Read
// renders whole blocks of float32 little-endian frames and hands them out
// in whatever chunk sizes the device asks for.
//
// Read runs on the device goroutine; Send and Output are the only methods
// meant for other goroutines.
type engine struct {
	proc     *harmonizer.Processor
	ctx      *process.Context
	channels int
	block    int

	in         chan midi.Event
	out        chan midi.Event
	inDropped  atomic.Uint64
	outDropped atomic.Uint64

	// test tone at the processor's root note
	toneLevel float32
	phase     float64

	frames  []float32
	bytes   []byte
	pending []byte

	timer *debug.BlockTimer
}

func newEngine(p *harmonizer.Processor, channels, block int, toneLevel float32) *engine {
	queue := p.Config().MaxEvents
	return &engine{
		proc:      p,
		ctx:       process.NewContext(p.SampleRate(), block, channels, channels, queue),
		channels:  channels,
		block:     block,
		in:        make(chan midi.Event, queue),
		out:       make(chan midi.Event, queue),
		toneLevel: toneLevel,
		frames:    make([]float32, block*channels),
		bytes:     make([]byte, block*channels*bytesPerSample),
		timer:     debug.NewBlockTimer(p.SampleRate()),
	}
}

// Send queues a live event for the next block. It never blocks; a full
// queue drops the event.
func (e *engine) Send(ev midi.Event) bool {
	select {
	case e.in <- ev:
		return true
	default:
		e.inDropped.Add(1)
		return false
	}
}

// Output delivers the expanded event stream.
func (e *engine) Output() <-chan midi.Event {
	return e.out
}

// Read fills p with rendered audio. It always fills p completely.
func (e *engine) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(e.pending) == 0 {
			e.renderBlock()
		}
		c := copy(p[n:], e.pending)
		e.pending = e.pending[c:]
		n += c
	}
	return n, nil
}

func (e *engine) renderBlock() {
	ctx := e.ctx
	ctx.SetBlockSize(e.block)

	// Live events have no sample position, they all start the block.
	ctx.Events.Clear()
drain:
	for ctx.Events.Remaining() > 0 {
		select {
		case ev := <-e.in:
			ev.Offset = 0
			ctx.Events.Add(ev)
		default:
			break drain
		}
	}

	e.tone()

	e.timer.Begin(e.block)
	e.proc.Process(ctx)
	e.timer.End()

	for _, ev := range ctx.Events.Events() {
		select {
		case e.out <- ev:
		default:
			e.outDropped.Add(1)
		}
	}

	ctx.Interleave(e.frames, e.channels)
	for i, v := range e.frames {
		binary.LittleEndian.PutUint32(e.bytes[i*bytesPerSample:], math.Float32bits(v))
	}
	e.pending = e.bytes
}

func (e *engine) tone() {
	ctx := e.ctx
	freq := midi.NoteToFrequency(uint8(e.proc.RootNote()), 440)
	step := 2 * math.Pi * freq / ctx.SampleRate

	inputs := ctx.NumInputChannels()
	for i := 0; i < ctx.NumSamples(); i++ {
		s := e.toneLevel * float32(math.Sin(e.phase))
		for ch := 0; ch < inputs; ch++ {
			ctx.Audio[ch][i] = s
		}
		e.phase += step
		if e.phase >= 2*math.Pi {
			e.phase -= 2 * math.Pi
		}
	}
}

// Timing returns the block timing so far.
func (e *engine) Timing() debug.BlockStats {
	return e.timer.Stats()
}

// Dropped returns how many live and expanded events were lost to full
// queues.
func (e *engine) Dropped() (in, out uint64) {
	return e.inDropped.Load(), e.outDropped.Load()
}
