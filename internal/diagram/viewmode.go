package diagram

import (
	"fmt"
	"strings"

	"schemagraph/internal/model"
)

//go:generate go tool stringer -type=ViewMode -linecomment -output=viewmode_string.go

// ViewMode selects the relationship view to project.
type ViewMode int

const (
	_ ViewMode = iota // zero value is not a valid view

	ViewHierarchy     // hierarchy
	ViewMappings      // mappings
	ViewJurisdictions // jurisdictions
)

// ViewModes lists every valid view mode.
var ViewModes = []ViewMode{ViewHierarchy, ViewMappings, ViewJurisdictions}

// IsValid returns true if m is one of the known view modes.
func (m ViewMode) IsValid() bool {
	return m >= ViewHierarchy && m <= ViewJurisdictions
}

// ParseViewMode parses a view name as used on the command line.
func ParseViewMode(s string) (ViewMode, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, m := range ViewModes {
		if m.String() == needle {
			return m, nil
		}
	}

	return 0, model.NewError(model.ClassProjection, "graph", "", model.ErrUnknownViewMode, fmt.Sprintf("%q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (m ViewMode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, model.NewError(model.ClassProjection, "graph", "", model.ErrUnknownViewMode, m.String())
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ViewMode) UnmarshalText(text []byte) error {
	v, err := ParseViewMode(string(text))
	if err != nil {
		return err
	}

	*m = v

	return nil
}
