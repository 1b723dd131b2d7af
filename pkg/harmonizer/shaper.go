package harmonizer

import (
	"github.com/justyntemme/harmonicfx/pkg/dsp/distortion"
	"github.com/justyntemme/harmonicfx/pkg/dsp/gain"
	"github.com/justyntemme/harmonicfx/pkg/dsp/pan"
)

// Shaper applies distortion, gain and equal-power pan to a block in place.
// It keeps no state between calls.
type Shaper struct {
	sat distortion.Saturator
}

// NewShaper creates a shaper
func NewShaper() Shaper {
	return Shaper{sat: distortion.NewSaturator()}
}

// Process shapes every channel of audio and reports whether it did
// anything. Bypass or an empty block leaves audio untouched.
func (s Shaper) Process(audio [][]float32, snap Snapshot) bool {
	if snap.Bypass || len(audio) == 0 || len(audio[0]) == 0 {
		return false
	}

	for _, ch := range audio {
		s.sat.ProcessBuffer(snap.Distortion, ch)
		gain.ApplyBuffer(ch, snap.Gain)
	}

	// Channels beyond the first two keep the gain-adjusted level.
	if len(audio) >= 2 {
		left, right := pan.EqualPower(snap.Pan)
		pan.ApplyStereo(audio[0], audio[1], left, right)
	}
	return true
}
