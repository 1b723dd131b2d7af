package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Info contains processor metadata
type Info struct {
	ID       string // Unique identifier (e.g., "com.example.harmonicfx")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Category (e.g., "Fx|Harmonic")
}

// String returns "Name Version (Vendor)" for banners and logs
func (i Info) String() string {
	s := i.Name
	if i.Version != "" {
		s += " " + i.Version
	}
	if i.Vendor != "" {
		s += " (" + i.Vendor + ")"
	}
	return s
}

// Validate checks that the metadata is usable
func (i Info) Validate() error {
	if i.ID == "" {
		return errors.New("plugin id is empty")
	}
	if strings.ContainsAny(i.ID, " \t\n") {
		return fmt.Errorf("plugin id %q contains whitespace", i.ID)
	}
	if i.Name == "" {
		return fmt.Errorf("plugin %s has no name", i.ID)
	}
	return nil
}
