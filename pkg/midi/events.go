// Package midi provides the MIDI event model used on the real-time path.
//
// Events are plain values so that a block's event stream can live in a
// pre-sized slice without boxing each message into an interface.
package midi

import (
	"fmt"
	"math"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	case EventTypePolyPressure:
		return "PolyPressure"
	case EventTypeControlChange:
		return "CC"
	case EventTypeProgramChange:
		return "ProgramChange"
	case EventTypeChannelPressure:
		return "ChannelPressure"
	case EventTypePitchBend:
		return "PitchBend"
	default:
		return "Unknown"
	}
}

// Event is a single channel-voice message stamped with its sample offset
// inside the current block.
//
// Data1 and Data2 follow the wire layout: note/velocity, controller/value,
// note/pressure, program/-, pressure/-. Bend holds the signed pitch bend
// value (-8192 to 8191, 0 is center).
type Event struct {
	Type    EventType
	Channel uint8
	Data1   uint8
	Data2   uint8
	Bend    int16
	Offset  int32
}

// Controller numbers
const (
	CCModWheel    uint8 = 1
	CCSustain     uint8 = 64
	CCAllNotesOff uint8 = 123
)

// MaxNote is the highest valid MIDI note number.
const MaxNote = 127

func NoteOn(channel, note, velocity uint8, offset int32) Event {
	return Event{Type: EventTypeNoteOn, Channel: channel, Data1: note, Data2: velocity, Offset: offset}
}

func NoteOff(channel, note, velocity uint8, offset int32) Event {
	return Event{Type: EventTypeNoteOff, Channel: channel, Data1: note, Data2: velocity, Offset: offset}
}

func ControlChange(channel, controller, value uint8, offset int32) Event {
	return Event{Type: EventTypeControlChange, Channel: channel, Data1: controller, Data2: value, Offset: offset}
}

// AllNotesOff builds the channel-mode message CC 123.
func AllNotesOff(channel uint8, offset int32) Event {
	return ControlChange(channel, CCAllNotesOff, 0, offset)
}

func PitchBend(channel uint8, value int16, offset int32) Event {
	return Event{Type: EventTypePitchBend, Channel: channel, Bend: value, Offset: offset}
}

func ProgramChange(channel, program uint8, offset int32) Event {
	return Event{Type: EventTypeProgramChange, Channel: channel, Data1: program, Offset: offset}
}

func ChannelPressure(channel, pressure uint8, offset int32) Event {
	return Event{Type: EventTypeChannelPressure, Channel: channel, Data1: pressure, Offset: offset}
}

func PolyPressure(channel, note, pressure uint8, offset int32) Event {
	return Event{Type: EventTypePolyPressure, Channel: channel, Data1: note, Data2: pressure, Offset: offset}
}

// Note returns the note number of note and poly pressure events.
func (e Event) Note() uint8 {
	return e.Data1
}

// Velocity returns the velocity of note events.
func (e Event) Velocity() uint8 {
	return e.Data2
}

// IsNoteStart reports whether the event starts a note. A Note-On with
// velocity 0 is a note end.
func (e Event) IsNoteStart() bool {
	return e.Type == EventTypeNoteOn && e.Data2 > 0
}

// IsNoteEnd reports whether the event ends a note.
func (e Event) IsNoteEnd() bool {
	return e.Type == EventTypeNoteOff || (e.Type == EventTypeNoteOn && e.Data2 == 0)
}

// IsAllNotesOff reports whether the event is the CC 123 channel-mode message.
func (e Event) IsAllNotesOff() bool {
	return e.Type == EventTypeControlChange && e.Data1 == CCAllNotesOff
}

func (e Event) String() string {
	switch e.Type {
	case EventTypeNoteOn, EventTypeNoteOff:
		return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}",
			e.Type, e.Channel, e.Data1, e.Data2, e.Offset)
	case EventTypeControlChange:
		return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
			e.Channel, e.Data1, e.Data2, e.Offset)
	case EventTypePitchBend:
		return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}",
			e.Channel, e.Bend, e.Offset)
	case EventTypePolyPressure:
		return fmt.Sprintf("PolyPressure{ch:%d, note:%d, pressure:%d, offset:%d}",
			e.Channel, e.Data1, e.Data2, e.Offset)
	case EventTypeChannelPressure:
		return fmt.Sprintf("ChannelPressure{ch:%d, pressure:%d, offset:%d}",
			e.Channel, e.Data1, e.Offset)
	case EventTypeProgramChange:
		return fmt.Sprintf("ProgramChange{ch:%d, prog:%d, offset:%d}",
			e.Channel, e.Data1, e.Offset)
	default:
		return fmt.Sprintf("Unknown{type:%d, offset:%d}", e.Type, e.Offset)
	}
}

// NoteToFrequency converts a note number to Hz for the given A4 tuning.
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((float64(note)-69.0)/12.0)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
