package midi

// Buffer holds the event stream of one block. Its capacity is fixed at
// construction; Add never grows the backing array, so the buffer can be
// reused on the audio thread without allocating.
type Buffer struct {
	events  []Event
	dropped int
}

// NewBuffer creates a buffer that holds up to capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		events: make([]Event, 0, capacity),
	}
}

// Add appends an event. It returns false and counts a drop when the buffer
// is full.
func (b *Buffer) Add(event Event) bool {
	if len(b.events) == cap(b.events) {
		b.dropped++
		return false
	}
	b.events = append(b.events, event)
	return true
}

// Events returns the stored events. The slice aliases the buffer and is
// only valid until the next mutation.
func (b *Buffer) Events() []Event {
	return b.events
}

// Len returns the number of stored events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return cap(b.events)
}

// Remaining returns how many more events fit.
func (b *Buffer) Remaining() int {
	return cap(b.events) - len(b.events)
}

// Dropped returns the number of events rejected since the last Clear.
func (b *Buffer) Dropped() int {
	return b.dropped
}

// Clear empties the buffer and resets the drop counter, keeping capacity.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
	b.dropped = 0
}

// Swap exchanges the contents of two buffers without copying events.
func (b *Buffer) Swap(other *Buffer) {
	b.events, other.events = other.events, b.events
	b.dropped, other.dropped = other.dropped, b.dropped
}

// Sort orders events by sample offset, keeping the relative order of events
// that share an offset. Insertion sort: block streams are short and almost
// always already ordered, and it does not allocate.
func (b *Buffer) Sort() {
	ev := b.events
	for i := 1; i < len(ev); i++ {
		e := ev[i]
		j := i - 1
		for j >= 0 && ev[j].Offset > e.Offset {
			ev[j+1] = ev[j]
			j--
		}
		ev[j+1] = e
	}
}

// IsSorted reports whether offsets are non-decreasing.
func (b *Buffer) IsSorted() bool {
	for i := 1; i < len(b.events); i++ {
		if b.events[i].Offset < b.events[i-1].Offset {
			return false
		}
	}
	return true
}
