// Package process provides the per-block processing context handed to the
// processor by a host.
package process

import (
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

// Context carries one block: the audio buffer, processed in place, and the
// block's MIDI event stream, replaced in place. A host allocates it once and
// reuses it for every block.
type Context struct {
	// Audio holds every channel of the block. The first NumInputs channels
	// carry input; the rest are output-only and hold garbage on entry.
	Audio      [][]float32
	NumInputs  int
	SampleRate float64

	// Events is the block's MIDI stream, sorted by offset.
	Events *midi.Buffer

	storage [][]float32
}

// NewContext creates a context with pre-allocated buffers for up to
// maxBlockSize frames on numChannels channels.
func NewContext(sampleRate float64, maxBlockSize, numInputs, numChannels, eventCapacity int) *Context {
	if numInputs > numChannels {
		numInputs = numChannels
	}
	c := &Context{
		Audio:      make([][]float32, numChannels),
		NumInputs:  numInputs,
		SampleRate: sampleRate,
		Events:     midi.NewBuffer(eventCapacity),
		storage:    make([][]float32, numChannels),
	}
	for ch := range c.storage {
		c.storage[ch] = make([]float32, maxBlockSize)
		c.Audio[ch] = c.storage[ch]
	}
	return c
}

// SetBlockSize reslices every channel to n frames, clamped to the allocated
// size. It does not allocate.
func (c *Context) SetBlockSize(n int) {
	for ch := range c.Audio {
		if ch >= len(c.storage) {
			break
		}
		if n > len(c.storage[ch]) {
			n = len(c.storage[ch])
		}
		if n < 0 {
			n = 0
		}
		c.Audio[ch] = c.storage[ch][:n]
	}
}

// NumSamples returns the number of frames in the block.
func (c *Context) NumSamples() int {
	if len(c.Audio) > 0 {
		return len(c.Audio[0])
	}
	return 0
}

// NumInputChannels returns the number of channels that carry input.
func (c *Context) NumInputChannels() int {
	if c.NumInputs > len(c.Audio) {
		return len(c.Audio)
	}
	return c.NumInputs
}

// ClearExtraOutputs zeros every channel beyond the input channels.
func (c *Context) ClearExtraOutputs() {
	for ch := c.NumInputChannels(); ch < len(c.Audio); ch++ {
		clear(c.Audio[ch])
	}
}
