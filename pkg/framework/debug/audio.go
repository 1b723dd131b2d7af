package debug

import (
	"fmt"
	"math"
)

// SignalStats accumulates sanity statistics over a rendered signal, block by
// block. The render host feeds it every output block and reports the result.
type SignalStats struct {
	Samples    int
	Peak       float32
	Clipped    int
	NaNCount   int
	sumSquares float64
	sum        float64

	// ClipThreshold is the absolute level at or above which a sample counts
	// as clipped.
	ClipThreshold float32
}

// NewSignalStats creates an accumulator with a 0.999 clip threshold.
func NewSignalStats() *SignalStats {
	return &SignalStats{ClipThreshold: 0.999}
}

// Add accumulates a block of samples.
func (s *SignalStats) Add(buffer []float32) {
	for _, sample := range buffer {
		if math.IsNaN(float64(sample)) || math.IsInf(float64(sample), 0) {
			s.NaNCount++
			continue
		}
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > s.Peak {
			s.Peak = abs
		}
		if abs >= s.ClipThreshold {
			s.Clipped++
		}
		s.sum += float64(sample)
		s.sumSquares += float64(sample) * float64(sample)
		s.Samples++
	}
}

// RMS returns the root mean square of every finite sample seen.
func (s *SignalStats) RMS() float32 {
	if s.Samples == 0 {
		return 0
	}
	return float32(math.Sqrt(s.sumSquares / float64(s.Samples)))
}

// DC returns the mean sample value.
func (s *SignalStats) DC() float32 {
	if s.Samples == 0 {
		return 0
	}
	return float32(s.sum / float64(s.Samples))
}

// Issues lists anything that looks wrong with the signal.
func (s *SignalStats) Issues(name string) []string {
	var issues []string
	if s.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d non-finite values", name, s.NaNCount))
	}
	if s.Clipped > 0 {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, s.Clipped))
	}
	if dc := s.DC(); math.Abs(float64(dc)) > 0.01 {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, dc))
	}
	return issues
}

// Log writes the statistics and any issues to l.
func (s *SignalStats) Log(l *Logger, name string) {
	l.Info("%s: %d samples, peak %.3f, rms %.3f", name, s.Samples, s.Peak, s.RMS())
	for _, issue := range s.Issues(name) {
		l.Warn("%s", issue)
	}
}
