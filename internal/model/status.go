package model

import "fmt"

// SchemaKind distinguishes canonical schemas from jurisdiction-local ones.
type SchemaKind string

const (
	// KindGlobal is a canonical, jurisdiction-independent schema.
	KindGlobal SchemaKind = "global"
	// KindDocument is a schema extracted from one source document.
	KindDocument SchemaKind = "document"
)

// IsValid returns true if k is a known schema kind.
func (k SchemaKind) IsValid() bool {
	return k == KindGlobal || k == KindDocument
}

// PropertyStatus is the review state of a property.
type PropertyStatus string

const (
	PropertyPending     PropertyStatus = "pending"
	PropertyApproved    PropertyStatus = "approved"
	PropertyRejected    PropertyStatus = "rejected"
	PropertyNeedsReview PropertyStatus = "needs_review"
)

// PropertyStatuses lists every property status in display order.
var PropertyStatuses = []PropertyStatus{PropertyPending, PropertyNeedsReview, PropertyApproved, PropertyRejected}

// String returns the string representation of the status.
func (s PropertyStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known property status.
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyPending, PropertyApproved, PropertyRejected, PropertyNeedsReview:
		return true
	default:
		return false
	}
}

// ParsePropertyStatus parses a property status name.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	st := PropertyStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("property status %q: %w", s, ErrUnknownStatus)
	}

	return st, nil
}

// IsTerminal reports whether no reviewer decision can move the property on.
func (s PropertyStatus) IsTerminal() bool {
	return s == PropertyApproved || s == PropertyRejected
}

// CanTransitionTo returns true if a reviewer decision may move s to target.
func (s PropertyStatus) CanTransitionTo(target PropertyStatus) bool {
	switch s {
	case PropertyPending, PropertyNeedsReview:
		return target == PropertyApproved || target == PropertyRejected
	case PropertyApproved, PropertyRejected:
		// Re-opening is an administrative action outside the workflow.
		return false
	default:
		return false
	}
}

// MappingStatus is the review state of a mapping.
type MappingStatus string

const (
	MappingPending  MappingStatus = "pending"
	MappingApproved MappingStatus = "approved"
	MappingRejected MappingStatus = "rejected"
	MappingConflict MappingStatus = "conflict"
)

// MappingStatuses lists every mapping status in display order.
var MappingStatuses = []MappingStatus{MappingPending, MappingConflict, MappingApproved, MappingRejected}

// String returns the string representation of the status.
func (s MappingStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known mapping status.
func (s MappingStatus) IsValid() bool {
	switch s {
	case MappingPending, MappingApproved, MappingRejected, MappingConflict:
		return true
	default:
		return false
	}
}

// ParseMappingStatus parses a mapping status name.
func ParseMappingStatus(s string) (MappingStatus, error) {
	st := MappingStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("mapping status %q: %w", s, ErrUnknownStatus)
	}

	return st, nil
}

// IsTerminal reports whether no reviewer decision can move the mapping on.
func (s MappingStatus) IsTerminal() bool {
	return s == MappingApproved || s == MappingRejected
}

// CanTransitionTo returns true if a reviewer decision may move s to target.
func (s MappingStatus) CanTransitionTo(target MappingStatus) bool {
	switch s {
	case MappingPending, MappingConflict:
		return target == MappingApproved || target == MappingRejected
	case MappingApproved, MappingRejected:
		return false
	default:
		return false
	}
}
