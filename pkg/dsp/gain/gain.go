// Package gain provides amplitude and gain-related DSP operations.
package gain

import (
	"math"
)

// MinDB is the floor returned for silent or negative amplitudes.
const MinDB = -100.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values at or below the floor.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	db := 20 * math.Log10(linear)
	if db < MinDB {
		return MinDB
	}
	return db
}

// LinearToDb32 is the float32 version of LinearToDb.
func LinearToDb32(linear float32) float32 {
	return float32(LinearToDb(float64(linear)))
}

// ApplyBuffer applies gain to an entire buffer in-place.
func ApplyBuffer(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] *= gain
	}
}
