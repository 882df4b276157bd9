package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"schemagraph/internal/common"
)

// Diagnostics holds all diagnostic information collected while validating
// entities or building the relationship index.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Entity is the entity kind this relates to ("schema", "property", "mapping").
	Entity string
	// EntityID identifies which entity this relates to (if any).
	EntityID string
	// Err is the underlying error, when the diagnostic was produced from one.
	Err error
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, entity, entityID string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	})
}

// AddErrorFrom records err as an error diagnostic, keeping it for errors.Is.
func (d *Diagnostics) AddErrorFrom(code string, err error, entity, entityID string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  err.Error(),
		Entity:   entity,
		EntityID: entityID,
		Err:      err,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, entity, entityID string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, entity, entityID string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasWarnings returns true if there are any warning diagnostics.
func (d *Diagnostics) HasWarnings() bool {
	return len(d.Warnings) > 0
}

// WarningsWithCode returns the warnings carrying the given code.
func (d *Diagnostics) WarningsWithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, w := range d.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}

	return out
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
// Underlying errors stay reachable through errors.Is.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var (
		parts   []string
		wrapped []error
	)

	for _, e := range d.Errors {
		parts = append(parts, e.String())
		if e.Err != nil {
			wrapped = append(wrapped, e.Err)
		}
	}

	if len(wrapped) == 0 {
		return errors.New(strings.Join(parts, "; "))
	}

	return fmt.Errorf("%s: %w", strings.Join(parts, "; "), errors.Join(wrapped...))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Entity != "" {
		prefix = append(prefix, "["+d.Entity+"]")
	}

	if d.EntityID != "" {
		prefix = append(prefix, d.EntityID)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
