package main

import (
	"fmt"
	"strings"
)

// findPort returns the index of the first port whose name contains hint,
// ignoring case.
func findPort(kind string, names []string, hint string) (int, error) {
	if len(names) == 0 {
		return -1, fmt.Errorf("no MIDI %ss available", kind)
	}
	lower := strings.ToLower(hint)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no MIDI %s contains %q", kind, hint)
}
