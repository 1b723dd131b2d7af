package harmonic

import (
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

// Expander rewrites a block's event stream, adding harmonic notes. It owns
// its scratch space and must be used from one goroutine.
type Expander struct {
	table   *Table
	tracker *Tracker

	amps  []float32 // table snapshot for the current block
	notes []uint8   // harmonics started by the current Note-On

	// per-event state for the release callback
	release  func(n *ActiveNote)
	out      *midi.Buffer
	offset   int32
	reserved int

	dropped   int
	untracked int
}

// NewExpander creates an expander reading up to maxTableSize table entries.
// The tracker's per-note capacity bounds how many harmonics one note can
// start.
func NewExpander(table *Table, tracker *Tracker, maxTableSize int) *Expander {
	if maxTableSize < 0 {
		maxTableSize = 0
	}
	e := &Expander{
		table:   table,
		tracker: tracker,
		amps:    make([]float32, maxTableSize),
		notes:   make([]uint8, 0, tracker.MaxHarmonics()),
	}
	e.release = e.noteOff
	return e
}

// Expand writes every event of in to out, in order, followed at the same
// offset by the harmonic events it implies. out is cleared first. When out
// runs out of room the originals are still copied and synthesized events are
// dropped and counted.
func (e *Expander) Expand(in, out *midi.Buffer) {
	out.Clear()

	// One short critical section per block.
	n := e.table.Snapshot(e.amps)
	amps := e.amps[:n]

	events := in.Events()
	e.out = out
	for i, ev := range events {
		out.Add(ev)

		// Slots still owed to the originals after this one.
		e.reserved = len(events) - i - 1
		e.offset = ev.Offset

		switch {
		case ev.IsNoteStart():
			e.noteOn(ev, amps)
		case ev.IsNoteEnd():
			e.tracker.Release(ev.Note(), e.release)
		case ev.IsAllNotesOff():
			e.tracker.Clear()
		}
	}
	e.out = nil
}

func (e *Expander) noteOn(ev midi.Event, amps []float32) {
	if e.tracker.Full() {
		e.untracked++
		return
	}

	root := int(ev.Note())
	e.notes = e.notes[:0]
	for h := 1; h < len(amps); h++ {
		a := amps[h] / MaxAmplitude
		if !(a > AmplitudeThreshold) {
			continue
		}
		note := root + SemitoneOffset(h)
		if note > midi.MaxNote {
			// Offsets only grow with h.
			break
		}
		if len(e.notes) == cap(e.notes) || !e.room() {
			e.dropped++
			continue
		}
		e.out.Add(midi.NoteOn(ev.Channel, uint8(note), HarmonicVelocity(ev.Velocity(), a), ev.Offset))
		e.notes = append(e.notes, uint8(note))
	}

	e.tracker.Add(ev.Note(), ev.Channel, e.notes)
}

func (e *Expander) noteOff(n *ActiveNote) {
	for _, note := range n.Harmonics {
		if !e.room() {
			e.dropped++
			continue
		}
		e.out.Add(midi.NoteOff(n.Channel, note, 0, e.offset))
	}
}

func (e *Expander) room() bool {
	return e.out.Remaining() > e.reserved
}

// Dropped returns how many synthesized events did not fit in the output
// buffer or in a note's harmonic list since the last ResetCounters.
func (e *Expander) Dropped() int {
	return e.dropped
}

// Untracked returns how many Note-Ons passed through without harmonics
// because the tracker was full.
func (e *Expander) Untracked() int {
	return e.untracked
}

// ResetCounters zeros Dropped and Untracked.
func (e *Expander) ResetCounters() {
	e.dropped = 0
	e.untracked = 0
}

// Tracker returns the tracker the expander registers notes with.
func (e *Expander) Tracker() *Tracker {
	return e.tracker
}
