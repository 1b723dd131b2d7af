// Package hostconfig loads the YAML settings shared by the harmonicfx hosts
// and applies them to a processor.
package hostconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/harmonicfx/pkg/framework/debug"
	"github.com/justyntemme/harmonicfx/pkg/framework/param"
	"github.com/justyntemme/harmonicfx/pkg/harmonizer"
	"github.com/justyntemme/harmonicfx/pkg/midi"
)

// Config is the host configuration file.
//
//	sample_rate: 48000
//	block_size: 512
//	log_level: debug
//	processor:
//	  max_notes: 64
//	params:
//	  gain: 80%
//	  distortion: tanh
//	  pan: 20L
//	harmonics: [0, 50, 30]
type Config struct {
	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	Channels   int     `yaml:"channels"`
	LogLevel   string  `yaml:"log_level"`

	Processor harmonizer.Config `yaml:"processor"`

	// Params maps parameter names to display values, e.g. "gain: 50%".
	Params map[string]string `yaml:"params"`

	Harmonics        []float32 `yaml:"harmonics"`
	HarmonicsEnabled *bool     `yaml:"harmonics_enabled"`
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  512,
		Channels:   2,
		LogLevel:   "info",
		Processor:  harmonizer.DefaultConfig(),
	}
}

// Load reads and validates a config file. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the host settings and the processor limits
func (c Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("sample_rate must be positive, got %g", c.SampleRate)
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("block_size must be at least 1, got %d", c.BlockSize)
	}
	if c.Channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", c.Channels)
	}
	if _, err := debug.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Processor.Validate()
}

// SetParam records a parameter override, as given on the command line
func (c *Config) SetParam(name, value string) {
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
	c.Params[name] = value
}

// ParseHarmonics parses a comma separated amplitude list such as "0,50,30".
func ParseHarmonics(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	values := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("harmonic %d: %w", i, err)
		}
		values[i] = float32(v)
	}
	return values, nil
}

// ParseNote accepts a MIDI note number or a name such as "C4" or "Eb3".
func ParseNote(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > midi.MaxNote {
			return 0, fmt.Errorf("note %d out of range", n)
		}
		return n, nil
	}
	v, err := param.NoteParser(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > midi.MaxNote {
		return 0, fmt.Errorf("note %s out of range", s)
	}
	return int(v), nil
}

// ConfigureLogging applies the log level to the default logger
func (c Config) ConfigureLogging() error {
	level, err := debug.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	debug.SetLevel(level)
	return nil
}

// NewProcessor creates and prepares a processor with the configured
// limits, geometry and initial state.
func (c Config) NewProcessor() (*harmonizer.Processor, error) {
	p, err := harmonizer.New(c.Processor)
	if err != nil {
		return nil, err
	}
	if err := p.Prepare(c.SampleRate, c.BlockSize, c.Channels, c.Channels); err != nil {
		return nil, err
	}
	if err := c.Apply(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply sets parameters, the harmonic table and the expansion switch.
// Parameters are applied in name order and the first bad one is returned.
func (c Config) Apply(p *harmonizer.Processor) error {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		prm := p.Parameters().GetByName(name)
		if prm == nil {
			return fmt.Errorf("unknown parameter %q (have %s)", name, parameterNames(p))
		}
		v, err := prm.ParseValue(c.Params[name])
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		prm.SetValue(v)
	}

	if c.Harmonics != nil {
		p.SetHarmonicValues(c.Harmonics)
	}
	if c.HarmonicsEnabled != nil {
		p.SetHarmonicEnabled(*c.HarmonicsEnabled)
	}
	return nil
}

func parameterNames(p *harmonizer.Processor) string {
	all := p.Parameters().All()
	names := make([]string, len(all))
	for i, prm := range all {
		names[i] = prm.Name
	}
	return strings.Join(names, ", ")
}
