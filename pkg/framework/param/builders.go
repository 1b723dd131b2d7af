package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		index := int(value + 0.5)
		if index >= 0 && index < len(options) {
			return options[index].Name
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(int32(len(options))).
		Flags(IsList).
		Formatter(formatter, parser)
	if len(options) > 0 {
		b.Default(options[0].Value)
	}
	return b
}

// LevelParameter creates a linear 0-1 level control shown in percent
func LevelParameter(id uint32, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultVal).
		Unit("%").
		Formatter(func(v float64) string {
			return PercentFormatter(v * 100)
		}, func(s string) (float64, error) {
			v, err := PercentParser(s)
			return v / 100, err
		})
}

// PanParameter creates a 0-1 stereo position control, 0.5 is center
func PanParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(0.5).
		Formatter(func(v float64) string {
			return PanFormatter(2*v - 1)
		}, func(s string) (float64, error) {
			v, err := PanParser(s)
			return (v + 1) / 2, err
		})
}

// BypassParameter creates a bypass on/off switch
func BypassParameter(id uint32, name string) *Builder {
	return New(id, name).
		Toggle().
		Bypass().
		Formatter(OnOffFormatter, OnOffParser)
}
