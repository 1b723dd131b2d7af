package midi

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultBPM is assumed when a file carries no tempo.
const DefaultBPM = 120.0

// fileResolution is the ticks-per-quarter used when writing files.
const fileResolution = 960

// TimedEvent is an event stamped with an absolute sample position. The
// embedded event's Offset is ignored until the event is placed in a block.
type TimedEvent struct {
	Sample int64
	Event  Event
}

// Timeline is a render-length, sample-ordered event sequence.
type Timeline []TimedEvent

// Block copies the events falling in [start, start+length) into buf with
// block-relative offsets. Events that do not fit are counted as drops by
// the buffer.
func (tl Timeline) Block(start int64, length int, buf *Buffer) {
	end := start + int64(length)
	i := sort.Search(len(tl), func(i int) bool { return tl[i].Sample >= start })
	for ; i < len(tl) && tl[i].Sample < end; i++ {
		e := tl[i].Event
		e.Offset = int32(tl[i].Sample - start)
		buf.Add(e)
	}
}

// End returns the sample position of the last event.
func (tl Timeline) End() int64 {
	if len(tl) == 0 {
		return 0
	}
	return tl[len(tl)-1].Sample
}

// ReadFile loads a Standard MIDI File and converts all tracks into one
// sample-stamped timeline. Only the first tempo is honoured.
func ReadFile(path string, sampleRate float64) (Timeline, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}

	ticks, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("unsupported time format in %s", path)
	}

	bpm := DefaultBPM
	if tempos := rd.TempoChanges(); len(tempos) > 0 && tempos[0].BPM > 0 {
		bpm = tempos[0].BPM
	}
	samplesPerTick := sampleRate * 60.0 / (bpm * float64(ticks))

	var tl Timeline
	for _, track := range rd.Tracks {
		var abs uint64
		for _, ev := range track {
			abs += uint64(ev.Delta)
			e, ok := Decode(gomidi.Message(ev.Message), 0)
			if !ok {
				continue
			}
			tl = append(tl, TimedEvent{
				Sample: int64(float64(abs)*samplesPerTick + 0.5),
				Event:  e,
			})
		}
	}

	sort.SliceStable(tl, func(i, j int) bool { return tl[i].Sample < tl[j].Sample })
	return tl, nil
}

// WriteFile stores a timeline as a single-track Standard MIDI File at the
// given tempo.
func WriteFile(path string, tl Timeline, sampleRate, bpm float64) error {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	ticksPerSample := bpm * fileResolution / (60.0 * sampleRate)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(fileResolution)

	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))

	var last uint32
	for _, te := range tl {
		msg := Encode(te.Event)
		if msg == nil {
			continue
		}
		tick := uint32(float64(te.Sample)*ticksPerSample + 0.5)
		if tick < last {
			tick = last
		}
		track.Add(tick-last, msg)
		last = tick
	}
	track.Close(0)

	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
