package harmonizer

import (
	"sync/atomic"

	"github.com/justyntemme/harmonicfx/pkg/dsp/analysis"
	"github.com/justyntemme/harmonicfx/pkg/dsp/envelope"
)

// MeterState tracks the meter's lifecycle
type MeterState int32

const (
	// MeterUninitialized has never been prepared
	MeterUninitialized MeterState = iota
	// MeterPrepared has fresh state and has not processed a block yet
	MeterPrepared
	// MeterRunning has processed at least one block since Prepare
	MeterRunning
)

func (s MeterState) String() string {
	switch s {
	case MeterUninitialized:
		return "uninitialized"
	case MeterPrepared:
		return "prepared"
	case MeterRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Meter follows the peak of the shaped signal with a ballistics filter and
// publishes the last filtered sample of channel 0 in decibels.
type Meter struct {
	follower *envelope.Ballistics
	scratch  [][]float32
	level    analysis.Level
	state    atomic.Int32
}

// NewMeter creates an unprepared meter reading the floor
func NewMeter(attackMs, releaseMs float64) *Meter {
	m := &Meter{follower: envelope.NewBallistics(attackMs, releaseMs)}
	m.follower.SetMode(envelope.LevelPeak)
	m.level.Reset()
	return m
}

// Prepare sizes the scratch buffer and resets the follower. It allocates
// and must not run on the audio thread.
func (m *Meter) Prepare(sampleRate float64, maxBlockSize, numChannels int) {
	m.follower.Prepare(sampleRate, numChannels)
	m.scratch = make([][]float32, numChannels)
	for ch := range m.scratch {
		m.scratch[ch] = make([]float32, maxBlockSize)
	}
	m.state.Store(int32(MeterPrepared))
}

// Process runs the follower over up to the prepared number of channels and
// stores the new level. Blocks longer than the prepared size are ignored.
func (m *Meter) Process(audio [][]float32) {
	if m.State() == MeterUninitialized || len(audio) == 0 || len(m.scratch) == 0 {
		return
	}
	n := len(audio[0])
	if n == 0 || n > len(m.scratch[0]) {
		return
	}

	channels := len(audio)
	if channels > len(m.scratch) {
		channels = len(m.scratch)
	}
	for ch := 0; ch < channels; ch++ {
		m.follower.Process(ch, audio[ch], m.scratch[ch][:n])
	}

	m.level.StoreLinear(m.scratch[0][n-1])
	m.state.Store(int32(MeterRunning))
}

// Level returns the last published level in decibels
func (m *Meter) Level() float32 {
	return m.level.Load()
}

// State returns the lifecycle state
func (m *Meter) State() MeterState {
	return MeterState(m.state.Load())
}
