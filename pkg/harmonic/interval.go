package harmonic

import "math"

// AmplitudeThreshold is the normalized amplitude a harmonic must exceed to
// be synthesized.
const AmplitudeThreshold = 0.01

// MaxAmplitude is the table value of a full-strength harmonic.
const MaxAmplitude = 100

// SemitoneOffset returns the distance in semitones from the root to table
// index h (harmonic number h+1), rounded to the nearest semitone.
func SemitoneOffset(h int) int {
	if h < 1 {
		return 0
	}
	return int(math.Round(12 * math.Log2(float64(h+1))))
}

// HarmonicVelocity scales velocity by a normalized amplitude and clamps the
// result to [1,127].
func HarmonicVelocity(velocity uint8, amplitude float32) uint8 {
	v := math.Round(float64(velocity) * float64(amplitude))
	switch {
	case !(v >= 1): // also catches NaN
		return 1
	case v > 127:
		return 127
	default:
		return uint8(v)
	}
}
