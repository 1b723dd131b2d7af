package debug

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// BlockTimer measures how long each processed block takes against the
// block's real-time deadline (frames / sample rate). Hosts wrap the
// processor's Process call with Begin/End; the timer itself never touches
// the processor.
type BlockTimer struct {
	mu         sync.Mutex
	sampleRate float64
	stats      BlockStats
	start      time.Time
	frames     int
}

// BlockStats holds accumulated timing statistics.
type BlockStats struct {
	Blocks    uint64
	Overruns  uint64
	Frames    uint64
	Total     time.Duration
	Min       time.Duration
	Max       time.Duration
	Last      time.Duration
	WorstLoad float64 // highest elapsed/deadline ratio seen
}

// NewBlockTimer creates a timer for the given sample rate.
func NewBlockTimer(sampleRate float64) *BlockTimer {
	return &BlockTimer{sampleRate: sampleRate}
}

// Deadline returns the real-time budget for a block of n frames.
func (b *BlockTimer) Deadline(n int) time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(n) / b.sampleRate * float64(time.Second))
}

// Begin marks the start of a block of n frames.
func (b *BlockTimer) Begin(n int) {
	b.mu.Lock()
	b.frames = n
	b.start = time.Now()
	b.mu.Unlock()
}

// End closes the block opened by Begin and reports whether it overran.
func (b *BlockTimer) End() bool {
	elapsed := time.Since(b.start)
	return b.Record(b.frames, elapsed)
}

// Record adds a measurement for a block of n frames that took elapsed.
func (b *BlockTimer) Record(n int, elapsed time.Duration) bool {
	deadline := b.Deadline(n)

	b.mu.Lock()
	defer b.mu.Unlock()

	s := &b.stats
	if s.Blocks == 0 || elapsed < s.Min {
		s.Min = elapsed
	}
	if elapsed > s.Max {
		s.Max = elapsed
	}
	s.Blocks++
	s.Frames += uint64(n)
	s.Total += elapsed
	s.Last = elapsed

	overrun := deadline > 0 && elapsed > deadline
	if overrun {
		s.Overruns++
	}
	if deadline > 0 {
		if load := float64(elapsed) / float64(deadline); load > s.WorstLoad {
			s.WorstLoad = load
		}
	}
	return overrun
}

// Stats returns a copy of the accumulated statistics.
func (b *BlockTimer) Stats() BlockStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Average returns the mean block time.
func (s BlockStats) Average() time.Duration {
	if s.Blocks == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Blocks)
}

// Load returns the average fraction of the real-time budget used, in percent.
func (s BlockStats) Load(sampleRate float64) float64 {
	if s.Frames == 0 || sampleRate <= 0 {
		return 0
	}
	audio := float64(s.Frames) / sampleRate * float64(time.Second)
	return float64(s.Total) / audio * 100
}

// Report generates a human-readable summary for blocks rendered at
// sampleRate.
func (s BlockStats) Report(sampleRate float64) string {
	if s.Blocks == 0 {
		return "No blocks recorded"
	}

	var sb strings.Builder
	sb.WriteString("Block Timing:\n")
	fmt.Fprintf(&sb, "  Sample Rate: %.0f Hz\n", sampleRate)
	fmt.Fprintf(&sb, "  Blocks:      %d (%d frames)\n", s.Blocks, s.Frames)
	fmt.Fprintf(&sb, "  Average:     %v\n", s.Average())
	fmt.Fprintf(&sb, "  Min:         %v\n", s.Min)
	fmt.Fprintf(&sb, "  Max:         %v\n", s.Max)
	fmt.Fprintf(&sb, "  Load:        %.2f%%\n", s.Load(sampleRate))
	fmt.Fprintf(&sb, "  Worst Load:  %.2f%%\n", s.WorstLoad*100)
	fmt.Fprintf(&sb, "  Overruns:    %d\n", s.Overruns)
	return sb.String()
}
