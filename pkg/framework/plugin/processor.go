// Package plugin defines the contract between a block processor and the
// host that schedules it.
package plugin

import (
	"github.com/justyntemme/harmonicfx/pkg/framework/param"
	"github.com/justyntemme/harmonicfx/pkg/framework/process"
)

// Processor is what a host drives. Prepare runs off the audio thread before
// the first block and whenever the geometry changes; Process runs once per
// block on the audio thread and must not allocate or block.
type Processor interface {
	Info() Info
	Parameters() *param.Registry
	Prepare(sampleRate float64, maxBlockSize, numInputs, numOutputs int) error
	Process(ctx *process.Context)
}

// Geometry is the block layout a processor was prepared for.
type Geometry struct {
	SampleRate   float64
	MaxBlockSize int
	NumInputs    int
	NumOutputs   int
}

// BaseProcessor provides the bookkeeping shared by processors
type BaseProcessor struct {
	info     Info
	params   *param.Registry
	geometry Geometry

	// Optional callbacks for customization
	onPrepare func(g Geometry, changed bool) error
	onReset   func()
}

// NewBaseProcessor creates a new base processor
func NewBaseProcessor(info Info) *BaseProcessor {
	return &BaseProcessor{
		info:   info,
		params: param.NewRegistry(),
	}
}

// Prepare records the geometry and runs the prepare callback. The callback
// learns whether anything differs from the previous call.
func (b *BaseProcessor) Prepare(sampleRate float64, maxBlockSize, numInputs, numOutputs int) error {
	g := Geometry{
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
		NumInputs:    numInputs,
		NumOutputs:   numOutputs,
	}
	changed := g != b.geometry

	if b.onPrepare != nil {
		if err := b.onPrepare(g, changed); err != nil {
			return err
		}
	}

	b.geometry = g
	return nil
}

// Reset runs the reset callback, if any. Like Prepare, it must not overlap
// block processing.
func (b *BaseProcessor) Reset() {
	if b.onReset != nil {
		b.onReset()
	}
}

// Info returns the processor metadata
func (b *BaseProcessor) Info() Info {
	return b.info
}

// Parameters returns the parameter registry for adding parameters
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

// Geometry returns the geometry of the last successful Prepare
func (b *BaseProcessor) Geometry() Geometry {
	return b.geometry
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.geometry.SampleRate
}

// OnPrepare sets a callback for Prepare. A returned error leaves the
// previous geometry in place.
func (b *BaseProcessor) OnPrepare(fn func(g Geometry, changed bool) error) {
	b.onPrepare = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
