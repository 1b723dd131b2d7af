package harmonizer

import (
	"fmt"
)

// Config sizes the processor's pre-allocated state. Everything the audio
// thread touches is allocated from these limits in New and Prepare.
type Config struct {
	// MaxNotes is the number of simultaneously tracked root notes.
	MaxNotes int `yaml:"max_notes"`
	// MaxHarmonicsPerNote bounds the harmonics one root can start.
	MaxHarmonicsPerNote int `yaml:"max_harmonics_per_note"`
	// MaxTableSize is how many harmonic table entries are read per block.
	MaxTableSize int `yaml:"max_table_size"`
	// MaxEvents is the capacity of a block's MIDI event stream.
	MaxEvents int `yaml:"max_events"`

	MeterAttackMs  float64 `yaml:"meter_attack_ms"`
	MeterReleaseMs float64 `yaml:"meter_release_ms"`

	// RootNote is the initial reference note shown to the UI.
	RootNote int `yaml:"root_note"`
}

// DefaultConfig returns the stock limits
func DefaultConfig() Config {
	return Config{
		MaxNotes:            128,
		MaxHarmonicsPerNote: 32,
		MaxTableSize:        128,
		MaxEvents:           1024,
		MeterAttackMs:       200,
		MeterReleaseMs:      200,
		RootNote:            60,
	}
}

// Validate checks the limits
func (c Config) Validate() error {
	if c.MaxNotes < 1 {
		return fmt.Errorf("max_notes must be at least 1, got %d", c.MaxNotes)
	}
	if c.MaxHarmonicsPerNote < 0 {
		return fmt.Errorf("max_harmonics_per_note must not be negative, got %d", c.MaxHarmonicsPerNote)
	}
	if c.MaxTableSize < 0 {
		return fmt.Errorf("max_table_size must not be negative, got %d", c.MaxTableSize)
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("max_events must be at least 1, got %d", c.MaxEvents)
	}
	if c.MeterAttackMs < 0 || c.MeterReleaseMs < 0 {
		return fmt.Errorf("meter times must not be negative, got %g/%g ms", c.MeterAttackMs, c.MeterReleaseMs)
	}
	if c.RootNote < 0 || c.RootNote > 127 {
		return fmt.Errorf("root_note must be a MIDI note, got %d", c.RootNote)
	}
	return nil
}
