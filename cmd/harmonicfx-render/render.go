package main

import (
	"math"

	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/process"
	"github.com/justyntemme/harmonicfx/pkg/harmonizer"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

const (
	defaultNote     = 60
	defaultVelocity = 100
	toneAmplitude   = 0.5
)

// defaultTimeline holds one C4 note lasting a second.
func defaultTimeline(sampleRate float64) midi.Timeline {
	return midi.Timeline{
		{Sample: 0, Event: midi.NoteOn(0, defaultNote, defaultVelocity, 0)},
		{Sample: int64(sampleRate), Event: midi.NoteOff(0, defaultNote, 0, 0)},
	}
}

// lowestNote returns the lowest started note, or the default note for a
// timeline without Note-Ons.
func lowestNote(tl midi.Timeline) uint8 {
	note := uint8(midi.MaxNote)
	found := false
	for _, te := range tl {
		if te.Event.IsNoteStart() && te.Event.Note() <= note {
			note = te.Event.Note()
			found = true
		}
	}
	if !found {
		return defaultNote
	}
	return note
}

// sine generates a mono test tone
func sine(freq float64, sampleRate, frames int) pcm {
	data := make([]float32, frames)
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range data {
		data[i] = float32(toneAmplitude * math.Sin(w*float64(i)))
	}
	return pcm{Data: data, Channels: 1, SampleRate: sampleRate}
}

// renderResult is the processed audio and the expanded event stream
type renderResult struct {
	Audio  pcm
	Events midi.Timeline
	Timing debug.BlockStats
	Signal *debug.SignalStats

	// timeline events that did not fit a block's event buffer
	InputDropped int
}

// render runs frames of input through p block by block, feeding the
// timeline's events to the block they fall in. p must be prepared for
// blockSize frames.
func render(p *harmonizer.Processor, input pcm, tl midi.Timeline, frames, blockSize, channels int) renderResult {
	sampleRate := p.SampleRate()
	ctx := process.NewContext(sampleRate, blockSize, channels, channels, p.Config().MaxEvents)
	timer := debug.NewBlockTimer(sampleRate)
	signal := debug.NewSignalStats()

	out := make([]float32, frames*channels)
	var events midi.Timeline
	inputDropped := 0

	for pos := 0; pos < frames; pos += blockSize {
		n := min(blockSize, frames-pos)
		ctx.SetBlockSize(n)

		var src []float32
		if start := pos * input.Channels; start < len(input.Data) {
			src = input.Data[start:]
		}
		ctx.Deinterleave(src, input.Channels)

		ctx.Events.Clear()
		tl.Block(int64(pos), n, ctx.Events)
		inputDropped += ctx.Events.Dropped()

		timer.Begin(n)
		p.Process(ctx)
		timer.End()

		for _, e := range ctx.Events.Events() {
			events = append(events, midi.TimedEvent{Sample: int64(pos) + int64(e.Offset), Event: e})
		}
		for ch := range ctx.Audio {
			signal.Add(ctx.Audio[ch])
		}
		ctx.Interleave(out[pos*channels:], channels)
	}

	return renderResult{
		Audio:  pcm{Data: out, Channels: channels, SampleRate: int(sampleRate)},
		Events: events,
		Timing: timer.Stats(),
		Signal: signal,

		InputDropped: inputDropped,
	}
}
