package harmonic

// ActiveNote is a sounding root and the harmonic notes started for it.
type ActiveNote struct {
	Root      uint8
	Channel   uint8
	Harmonics []uint8
}

// Tracker records active notes in a fixed pool of slots. Each slot owns a
// fixed-capacity harmonic list carved from one backing array, so Add and
// Release never allocate. A Tracker belongs to the audio thread.
type Tracker struct {
	slots []ActiveNote
	free  []int // stack of unused slot indices
	order []int // used slot indices, oldest first
}

// NewTracker creates a tracker for up to maxNotes simultaneous notes with
// up to maxHarmonics harmonics each.
func NewTracker(maxNotes, maxHarmonics int) *Tracker {
	if maxNotes < 1 {
		maxNotes = 1
	}
	if maxHarmonics < 0 {
		maxHarmonics = 0
	}

	t := &Tracker{
		slots: make([]ActiveNote, maxNotes),
		free:  make([]int, 0, maxNotes),
		order: make([]int, 0, maxNotes),
	}
	arena := make([]uint8, maxNotes*maxHarmonics)
	for i := range t.slots {
		t.slots[i].Harmonics = arena[i*maxHarmonics : i*maxHarmonics : (i+1)*maxHarmonics]
	}
	t.Clear()
	return t
}

// Add registers a note and copies its harmonics, truncated to the per-note
// capacity. It returns false when every slot is in use.
func (t *Tracker) Add(root, channel uint8, harmonics []uint8) bool {
	if len(t.free) == 0 {
		return false
	}
	idx := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]

	s := &t.slots[idx]
	s.Root = root
	s.Channel = channel
	s.Harmonics = s.Harmonics[:0]
	n := len(harmonics)
	if c := cap(s.Harmonics); n > c {
		n = c
	}
	s.Harmonics = append(s.Harmonics, harmonics[:n]...)

	t.order = append(t.order, idx)
	return true
}

// Release removes every note whose root matches, newest first, calling
// visit for each before its slot is reused. It returns the number of notes
// removed.
func (t *Tracker) Release(root uint8, visit func(n *ActiveNote)) int {
	removed := 0
	for i := len(t.order) - 1; i >= 0; i-- {
		idx := t.order[i]
		if t.slots[idx].Root != root {
			continue
		}
		if visit != nil {
			visit(&t.slots[idx])
		}
		t.order = append(t.order[:i], t.order[i+1:]...)
		t.free = append(t.free, idx)
		removed++
	}
	return removed
}

// Clear forgets every note.
func (t *Tracker) Clear() {
	t.order = t.order[:0]
	t.free = t.free[:0]
	for i := len(t.slots) - 1; i >= 0; i-- {
		t.free = append(t.free, i)
	}
}

// Len returns the number of active notes.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Full reports whether Add would fail.
func (t *Tracker) Full() bool {
	return len(t.free) == 0
}

// MaxHarmonics returns the per-note harmonic capacity.
func (t *Tracker) MaxHarmonics() int {
	if len(t.slots) == 0 {
		return 0
	}
	return cap(t.slots[0].Harmonics)
}
