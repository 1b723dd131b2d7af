// Package pan provides stereo panning operations.
package pan

import (
	"math"
)

// FromUnit maps a [0,1] control value to a [-1,1] pan position.
func FromUnit(value float32) float32 {
	return 2*value - 1
}

// Gains returns constant power left and right gains for a pan position.
// pan: -1.0 = hard left, 0.0 = center, 1.0 = hard right
func Gains(pan float32) (left, right float32) {
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	return constantPowerPan(pan)
}

// EqualPower returns constant power gains for a [0,1] control value.
func EqualPower(value float32) (left, right float32) {
	return Gains(FromUnit(value))
}

// ApplyStereo scales the left and right buffers in place.
func ApplyStereo(left, right []float32, leftGain, rightGain float32) {
	for i := range left {
		left[i] *= leftGain
	}
	for i := range right {
		right[i] *= rightGain
	}
}

// constantPowerPan implements equal power panning using sine/cosine.
func constantPowerPan(pan float32) (left, right float32) {
	// [-1, 1] -> [0, pi/2]
	angle := float64(pan+1) * math.Pi / 4
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}
