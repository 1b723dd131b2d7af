package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Decode converts a raw channel-voice message into an Event at the given
// sample offset. System, realtime and meta messages are not representable
// and return false.
func Decode(msg gomidi.Message, offset int32) (Event, bool) {
	var ch, d1, d2 uint8

	switch {
	case msg.GetNoteOn(&ch, &d1, &d2):
		return NoteOn(ch, d1, d2, offset), true
	case msg.GetNoteOff(&ch, &d1, &d2):
		return NoteOff(ch, d1, d2, offset), true
	case msg.GetControlChange(&ch, &d1, &d2):
		return ControlChange(ch, d1, d2, offset), true
	case msg.GetPolyAfterTouch(&ch, &d1, &d2):
		return PolyPressure(ch, d1, d2, offset), true
	case msg.GetAfterTouch(&ch, &d1):
		return ChannelPressure(ch, d1, offset), true
	case msg.GetProgramChange(&ch, &d1):
		return ProgramChange(ch, d1, offset), true
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		return PitchBend(ch, rel, offset), true
	}

	return Event{}, false
}

// Encode converts an Event back to its raw wire form. The sample offset is
// not part of the message.
func Encode(e Event) gomidi.Message {
	switch e.Type {
	case EventTypeNoteOn:
		return gomidi.NoteOn(e.Channel, e.Data1, e.Data2)
	case EventTypeNoteOff:
		return gomidi.NoteOffVelocity(e.Channel, e.Data1, e.Data2)
	case EventTypeControlChange:
		return gomidi.ControlChange(e.Channel, e.Data1, e.Data2)
	case EventTypePolyPressure:
		return gomidi.PolyAfterTouch(e.Channel, e.Data1, e.Data2)
	case EventTypeChannelPressure:
		return gomidi.AfterTouch(e.Channel, e.Data1)
	case EventTypeProgramChange:
		return gomidi.ProgramChange(e.Channel, e.Data1)
	case EventTypePitchBend:
		return gomidi.Pitchbend(e.Channel, e.Bend)
	default:
		return nil
	}
}
