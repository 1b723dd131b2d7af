package analysis

import (
	"math"
	"sync/atomic"

	"github.com/justyntemme/harmonicfx/pkg/dsp/gain"
)

// Level is a decibel reading stored as atomic float32 bits. The zero value
// reads 0 dB; call Reset to start at the floor.
type Level struct {
	bits atomic.Uint32
}

// Store sets the reading in decibels
func (l *Level) Store(db float32) {
	l.bits.Store(math.Float32bits(db))
}

// StoreLinear converts a linear amplitude to decibels, floored at
// gain.MinDB, and stores it
func (l *Level) StoreLinear(amplitude float32) {
	l.Store(gain.LinearToDb32(float32(math.Abs(float64(amplitude)))))
}

// Load returns the reading in decibels
func (l *Level) Load() float32 {
	return math.Float32frombits(l.bits.Load())
}

// Reset sets the reading to the floor
func (l *Level) Reset() {
	l.Store(gain.MinDB)
}
