package harmonic

import (
	"math"
	"sync"
)

// Table is the harmonic amplitude table shared between a control thread,
// which replaces it, and the audio thread, which copies it once per block.
// The lock is only held for a copy; allocation happens outside it.
type Table struct {
	mu     sync.Mutex
	values []float32
}

// NewTable creates a table holding values.
func NewTable(values []float32) *Table {
	t := &Table{}
	t.Set(values)
	return t
}

// Set replaces the table. Values are clamped to [0, MaxAmplitude] and NaN
// becomes 0.
func (t *Table) Set(values []float32) {
	next := make([]float32, len(values))
	for i, v := range values {
		next[i] = sanitize(v)
	}

	t.mu.Lock()
	t.values = next
	t.mu.Unlock()
}

// Snapshot copies as much of the table as fits into dst and returns the
// number of values copied. It does not allocate.
func (t *Table) Snapshot(dst []float32) int {
	t.mu.Lock()
	n := copy(dst, t.values)
	t.mu.Unlock()
	return n
}

// Values returns a copy of the table.
func (t *Table) Values() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]float32(nil), t.values...)
}

// Len returns the number of entries, fundamental included.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}

func sanitize(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)) || v < 0:
		return 0
	case v > MaxAmplitude:
		return MaxAmplitude
	default:
		return v
	}
}
