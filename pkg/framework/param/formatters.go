package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecibelFloor is shown as -inf by DecibelFormatter.
const DecibelFloor = -100.0

// DecibelFormatter formats decibel values
func DecibelFormatter(db float64) string {
	if db <= DecibelFloor {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// PercentFormatter formats percentage values
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// PercentParser parses percentage strings
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}

// PanFormatter formats a -1..1 pan position
func PanFormatter(pan float64) string {
	if math.Abs(pan) < 0.01 {
		return "C"
	} else if pan < 0 {
		return fmt.Sprintf("%.0fL", -pan*100)
	}
	return fmt.Sprintf("%.0fR", pan*100)
}

// PanParser parses pan position strings into -1..1
func PanParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	if str == "C" || str == "CENTER" {
		return 0, nil
	}

	if numStr, ok := strings.CutSuffix(str, "L"); ok {
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return -val / 100, nil
	}

	if numStr, ok := strings.CutSuffix(str, "R"); ok {
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return val / 100, nil
	}

	return strconv.ParseFloat(str, 64)
}

// NoteParser parses note names such as "C4" or "Eb3" to MIDI numbers
func NoteParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	noteMap := map[string]int{
		"C": 0, "B#": 0,
		"C#": 1, "DB": 1,
		"D": 2,
		"D#": 3, "EB": 3,
		"E": 4, "FB": 4,
		"F": 5, "E#": 5,
		"F#": 6, "GB": 6,
		"G": 7,
		"G#": 8, "AB": 8,
		"A": 9,
		"A#": 10, "BB": 10,
		"B": 11, "CB": 11,
	}

	octaveStart := strings.IndexAny(str, "-0123456789")
	if octaveStart <= 0 {
		return 0, fmt.Errorf("no octave number found in note: %s", str)
	}

	noteOffset, ok := noteMap[str[:octaveStart]]
	if !ok {
		return 0, fmt.Errorf("unknown note name: %s", str[:octaveStart])
	}

	octave, err := strconv.Atoi(str[octaveStart:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave number: %s", str[octaveStart:])
	}

	return float64((octave+1)*12 + noteOffset), nil
}

// OnOffFormatter formats boolean as On/Off
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser parses On/Off strings
func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	default:
		return 0, fmt.Errorf("expected 'on' or 'off', got: %s", str)
	}
}
