package midi

import (
	"math"
	"testing"
)

func TestNoteOnEvent(t *testing.T) {
	event := NoteOn(0, 60, 64, 100)

	if event.Type != EventTypeNoteOn {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOn, event.Type)
	}

	if event.Note() != 60 || event.Velocity() != 64 {
		t.Errorf("Expected note 60 vel 64, got note %d vel %d", event.Note(), event.Velocity())
	}

	if !event.IsNoteStart() || event.IsNoteEnd() {
		t.Error("NoteOn with velocity should be a note start")
	}

	expected := "NoteOn{ch:0, note:60, vel:64, offset:100}"
	if event.String() != expected {
		t.Errorf("Expected string %s, got %s", expected, event.String())
	}
}

func TestNoteOffEvent(t *testing.T) {
	event := NoteOff(1, 72, 0, 200)

	if event.Type != EventTypeNoteOff {
		t.Errorf("Expected type %v, got %v", EventTypeNoteOff, event.Type)
	}

	if event.Channel != 1 {
		t.Errorf("Expected channel 1, got %d", event.Channel)
	}

	if !event.IsNoteEnd() {
		t.Error("NoteOff should be a note end")
	}
}

func TestZeroVelocityNoteOnIsNoteEnd(t *testing.T) {
	event := NoteOn(0, 60, 0, 0)
	if event.IsNoteStart() {
		t.Error("NoteOn with velocity 0 must not start a note")
	}
	if !event.IsNoteEnd() {
		t.Error("NoteOn with velocity 0 must end a note")
	}
}

func TestControlChangeEvent(t *testing.T) {
	event := ControlChange(0, CCModWheel, 100, 50)

	if event.Type != EventTypeControlChange {
		t.Errorf("Expected type %v, got %v", EventTypeControlChange, event.Type)
	}

	expected := "CC{ch:0, ctrl:1, val:100, offset:50}"
	if event.String() != expected {
		t.Errorf("Expected string %s, got %s", expected, event.String())
	}

	if event.IsAllNotesOff() {
		t.Error("Mod wheel is not all-notes-off")
	}
	if !AllNotesOff(3, 0).IsAllNotesOff() {
		t.Error("CC 123 should be all-notes-off")
	}
}

func TestPitchBendEvent(t *testing.T) {
	for _, v := range []int16{0, 8191, -8192, 4096} {
		e := PitchBend(2, v, 7)
		if e.Type != EventTypePitchBend || e.Bend != v || e.Channel != 2 || e.Offset != 7 {
			t.Errorf("PitchBend(%d) = %+v", v, e)
		}
	}
	if got := PitchBend(0, -100, 3).String(); got != "PitchBend{ch:0, val:-100, offset:3}" {
		t.Errorf("String() = %s", got)
	}
}

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		note uint8
		freq float64
	}{
		{69, 440.0},
		{60, 261.63},
		{57, 220.0},
		{81, 880.0},
	}

	for _, tt := range tests {
		freq := NoteToFrequency(tt.note, 440.0)
		if math.Abs(freq-tt.freq) > 0.1 {
			t.Errorf("For note %d, expected frequency %f, got %f", tt.note, tt.freq, freq)
		}
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := []struct {
		note uint8
		name string
	}{
		{60, "C4"},
		{69, "A4"},
		{0, "C-1"},
		{127, "G9"},
		{61, "C#4"},
		{70, "A#4"},
	}

	for _, tt := range tests {
		name := NoteNumberToName(tt.note)
		if name != tt.name {
			t.Errorf("For note %d, expected name %s, got %s", tt.note, tt.name, name)
		}
	}
}
