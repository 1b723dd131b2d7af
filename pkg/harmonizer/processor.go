// Package harmonizer is the block processor: it expands MIDI notes into
// harmonics, shapes the audio and meters the result.
package harmonizer

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/plugin"
	"github.com/justyntemme/harmonicfx/pkg/framework/process"
	"github.com/justyntemme/harmonicfx/pkg/harmonic"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

var (
	// ErrInvalidSampleRate is returned by Prepare for a non-positive or
	// non-finite sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrInvalidBlockSize is returned by Prepare for a non-positive block size.
	ErrInvalidBlockSize = errors.New("invalid block size")
	// ErrInvalidChannels is returned by Prepare for an unusable channel layout.
	ErrInvalidChannels = errors.New("invalid channel layout")
	// ErrNotPrepared is returned by CheckBlock before the first Prepare.
	ErrNotPrepared = errors.New("processor not prepared")
	// ErrBlockTooLarge is returned by CheckBlock for a block longer than the
	// prepared maximum.
	ErrBlockTooLarge = errors.New("block exceeds prepared size")
	// ErrEventCapacity is returned by CheckBlock when the context's event
	// buffer capacity differs from Config.MaxEvents.
	ErrEventCapacity = errors.New("event buffer capacity mismatch")
)

// PluginInfo describes the processor
var PluginInfo = plugin.Info{
	ID:       "com.justyntemme.harmonicfx",
	Name:     "harmonicfx",
	Version:  "0.1.0",
	Vendor:   "justyntemme",
	Category: "Fx|Harmonic",
}

// Stats are counters published by the audio thread after every block
type Stats struct {
	DroppedEvents  uint64 // synthesized events that did not fit
	UntrackedNotes uint64 // Note-Ons passed through with a full tracker
	SkippedBlocks  uint64 // blocks passed through unprocessed
}

// Processor sequences the harmonic expander, shaper and meter for each block.
//
// Process runs on the audio thread. Parameter changes, SetHarmonicValues,
// SetHarmonicEnabled, SetRootNote and all getters are safe from any other
// goroutine. Prepare and Reset touch audio thread state and must not
// overlap Process.
type Processor struct {
	*plugin.BaseProcessor

	cfg    Config
	log    *debug.Logger
	params paramSet

	table    *harmonic.Table
	expander *harmonic.Expander
	events   *midi.Buffer // expander output, swapped into the context
	shaper   Shaper
	meter    *Meter

	maxBlockSize int
	numOutputs   int

	harmonicEnabled atomic.Bool
	rootNote        atomic.Int32
	activeNotes     atomic.Int32

	dropped   atomic.Uint64
	untracked atomic.Uint64
	skipped   atomic.Uint64
}

// New creates a processor with the given limits
func New(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("harmonizer config: %w", err)
	}

	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(PluginInfo),
		cfg:           cfg,
		log:           debug.Default().With("harmonizer"),
		table:         harmonic.NewTable(nil),
		events:        midi.NewBuffer(cfg.MaxEvents),
		shaper:        NewShaper(),
		meter:         NewMeter(cfg.MeterAttackMs, cfg.MeterReleaseMs),
	}

	params, err := registerParameters(p.Parameters())
	if err != nil {
		return nil, err
	}
	p.params = params

	tracker := harmonic.NewTracker(cfg.MaxNotes, cfg.MaxHarmonicsPerNote)
	p.expander = harmonic.NewExpander(p.table, tracker, cfg.MaxTableSize)

	p.harmonicEnabled.Store(true)
	p.rootNote.Store(int32(cfg.RootNote))

	p.OnPrepare(p.prepare)
	p.OnReset(p.reset)
	return p, nil
}

// SetLogger replaces the logger used outside the audio thread
func (p *Processor) SetLogger(l *debug.Logger) {
	p.log = l
}

// Config returns the limits the processor was built with
func (p *Processor) Config() Config {
	return p.cfg
}

func (p *Processor) prepare(g plugin.Geometry, changed bool) error {
	if g.SampleRate <= 0 || math.IsNaN(g.SampleRate) || math.IsInf(g.SampleRate, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, g.SampleRate)
	}
	if g.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, g.MaxBlockSize)
	}
	if g.NumInputs < 0 || g.NumOutputs < 1 {
		return fmt.Errorf("%w: %d in, %d out", ErrInvalidChannels, g.NumInputs, g.NumOutputs)
	}

	p.meter.Prepare(g.SampleRate, g.MaxBlockSize, g.NumOutputs)
	p.maxBlockSize = g.MaxBlockSize
	p.numOutputs = g.NumOutputs
	if changed {
		p.log.Info("prepared %.0f Hz, %d frames, %d in / %d out", g.SampleRate, g.MaxBlockSize, g.NumInputs, g.NumOutputs)
	} else {
		p.log.Debug("re-prepared, meter reset")
	}
	return nil
}

// reset forgets every sounding note without emitting Note-Offs. It runs
// from Reset, which must not overlap Process.
func (p *Processor) reset() {
	p.expander.Tracker().Clear()
	p.activeNotes.Store(0)
}

// Snapshot reads the current parameter values
func (p *Processor) Snapshot() Snapshot {
	return p.params.snapshot()
}

// CheckBlock reports whether Process would process a context of this size
// rather than pass it through.
func (p *Processor) CheckBlock(ctx *process.Context) error {
	if p.meter.State() == MeterUninitialized {
		return ErrNotPrepared
	}
	if n := ctx.NumSamples(); n > p.maxBlockSize {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, n, p.maxBlockSize)
	}
	if ctx.Events != nil && ctx.Events.Cap() != p.events.Cap() {
		return fmt.Errorf("%w: %d, want %d", ErrEventCapacity, ctx.Events.Cap(), p.events.Cap())
	}
	return nil
}

func (p *Processor) handles(ctx *process.Context) bool {
	return p.meter.State() != MeterUninitialized &&
		ctx.NumSamples() <= p.maxBlockSize &&
		(ctx.Events == nil || ctx.Events.Cap() == p.events.Cap())
}

// Process runs one block in place: surplus output channels are cleared,
// the event stream is replaced by its harmonic expansion, the audio is
// shaped and the meter updated. It never allocates, blocks or fails; a
// block CheckBlock would reject is passed through untouched and counted.
// The context's event buffer is swapped with an internal one of the same
// capacity, so its capacity must equal Config.MaxEvents.
func (p *Processor) Process(ctx *process.Context) {
	if !p.handles(ctx) {
		p.skipped.Add(1)
		return
	}

	ctx.ClearExtraOutputs()

	if p.harmonicEnabled.Load() && ctx.Events != nil {
		if !ctx.Events.IsSorted() {
			ctx.Events.Sort()
		}
		p.expander.Expand(ctx.Events, p.events)
		ctx.Events.Swap(p.events)
		p.publishExpanderStats()
	}

	if !p.shaper.Process(ctx.Audio, p.Snapshot()) {
		return
	}

	outputs := ctx.Audio
	if len(outputs) > p.numOutputs {
		outputs = outputs[:p.numOutputs]
	}
	p.meter.Process(outputs)
}

func (p *Processor) publishExpanderStats() {
	if d := p.expander.Dropped(); d > 0 {
		p.dropped.Add(uint64(d))
	}
	if u := p.expander.Untracked(); u > 0 {
		p.untracked.Add(uint64(u))
	}
	p.expander.ResetCounters()
	p.activeNotes.Store(int32(p.expander.Tracker().Len()))
}

// SetHarmonicValues replaces the harmonic table. Index 0 is the
// fundamental; entries are amplitudes in [0,100].
func (p *Processor) SetHarmonicValues(values []float32) {
	p.table.Set(values)
	if len(values) > p.cfg.MaxTableSize {
		p.log.Warn("harmonic table has %d entries, only the first %d are used", len(values), p.cfg.MaxTableSize)
		return
	}
	p.log.Debug("harmonics updated: %d values", len(values))
}

// HarmonicValues returns a copy of the harmonic table
func (p *Processor) HarmonicValues() []float32 {
	return p.table.Values()
}

// SetHarmonicEnabled turns MIDI harmonic expansion on or off
func (p *Processor) SetHarmonicEnabled(enabled bool) {
	p.harmonicEnabled.Store(enabled)
}

// HarmonicEnabled reports whether MIDI harmonic expansion runs
func (p *Processor) HarmonicEnabled() bool {
	return p.harmonicEnabled.Load()
}

// SetRootNote sets the reference note shown by user interfaces. It does not
// affect processing.
func (p *Processor) SetRootNote(note int) {
	if note < 0 {
		note = 0
	} else if note > midi.MaxNote {
		note = midi.MaxNote
	}
	p.rootNote.Store(int32(note))
}

// RootNote returns the reference note
func (p *Processor) RootNote() int {
	return int(p.rootNote.Load())
}

// OutputLevelLeft returns the channel 0 meter level in decibels
func (p *Processor) OutputLevelLeft() float32 {
	return p.meter.Level()
}

// MeterState returns the meter lifecycle state
func (p *Processor) MeterState() MeterState {
	return p.meter.State()
}

// ActiveNoteCount returns how many root notes were sounding after the last
// processed block
func (p *Processor) ActiveNoteCount() int {
	return int(p.activeNotes.Load())
}

// Stats returns the audio thread counters
func (p *Processor) Stats() Stats {
	return Stats{
		DroppedEvents:  p.dropped.Load(),
		UntrackedNotes: p.untracked.Load(),
		SkippedBlocks:  p.skipped.Load(),
	}
}

var _ plugin.Processor = (*Processor)(nil)
