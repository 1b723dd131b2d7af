// Package envelope provides level followers for metering.
package envelope

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// LevelMode selects what a Ballistics filter follows
type LevelMode int

const (
	// LevelPeak follows the rectified signal
	LevelPeak LevelMode = iota
	// LevelRMS follows the squared signal and returns its square root
	LevelRMS
)

// Ballistics is a one-pole attack/release follower for metering. Each
// channel keeps its own state; Prepare sizes the state and resets it.
type Ballistics struct {
	sampleRate float64
	mode       LevelMode

	// Time constants in milliseconds
	attackMs  float64
	releaseMs float64

	// Coefficients (pre-calculated)
	attackCoef  float64
	releaseCoef float64

	state []float64
}

// NewBallistics creates a peak follower with the given attack and release
// times in milliseconds. Call Prepare before processing.
func NewBallistics(attackMs, releaseMs float64) *Ballistics {
	b := &Ballistics{
		sampleRate: 44100,
		attackMs:   attackMs,
		releaseMs:  releaseMs,
	}
	b.updateCoefficients()
	return b
}

// Prepare sets the sample rate and channel count and clears all state.
func (b *Ballistics) Prepare(sampleRate float64, numChannels int) {
	if sampleRate > 0 {
		b.sampleRate = sampleRate
	}
	if numChannels < 0 {
		numChannels = 0
	}
	if cap(b.state) >= numChannels {
		b.state = b.state[:numChannels]
	} else {
		b.state = make([]float64, numChannels)
	}
	b.Reset()
	b.updateCoefficients()
}

// SetMode sets the level calculation mode
func (b *Ballistics) SetMode(mode LevelMode) {
	b.mode = mode
}

// Reset clears the follower state
func (b *Ballistics) Reset() {
	clear(b.state)
}

// ProcessSample advances channel ch by one sample and returns its output.
// Out-of-range channels return 0.
func (b *Ballistics) ProcessSample(ch int, x float32) float32 {
	if ch < 0 || ch >= len(b.state) {
		return 0
	}

	in := float64(x)
	if b.mode == LevelRMS {
		in *= in
	} else {
		in = math.Abs(in)
	}

	prev := b.state[ch]
	coef := b.releaseCoef
	if in > prev {
		coef = b.attackCoef
	}
	y := dspcore.FlushDenormals(in + coef*(prev-in))
	b.state[ch] = y

	if b.mode == LevelRMS {
		return float32(math.Sqrt(y))
	}
	return float32(y)
}

// Process runs channel ch of in through the follower into out. out may
// alias in.
func (b *Ballistics) Process(ch int, in, out []float32) {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = b.ProcessSample(ch, in[i])
	}
}

// coefficient for a time constant, exp(-2*pi*1000 / (ms*sampleRate)).
// A zero time constant gives an instant response.
func (b *Ballistics) coefficient(ms float64) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-2 * math.Pi * 1000 / (ms * b.sampleRate))
}

func (b *Ballistics) updateCoefficients() {
	b.attackCoef = b.coefficient(b.attackMs)
	b.releaseCoef = b.coefficient(b.releaseMs)
}
