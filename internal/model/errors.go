package model

import (
	"errors"
	"fmt"
)

// Class groups errors by how callers are expected to handle them.
type Class int

const (
	// ClassStructural marks entities rejected at validation time.
	ClassStructural Class = iota
	// ClassReferential marks dangling identifiers; the build still succeeds.
	ClassReferential
	// ClassTransition marks rejected workflow decisions, reported per item.
	ClassTransition
	// ClassProjection marks caller defects such as an unknown view mode.
	ClassProjection
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassStructural:
		return "structural"
	case ClassReferential:
		return "referential"
	case ClassTransition:
		return "transition"
	case ClassProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// Sentinel errors. Every *Error wraps exactly one of these.
var (
	ErrInvalidParentKind         = errors.New("invalid parent kind")
	ErrCyclicParent              = errors.New("cyclic parent chain")
	ErrSelfMapping               = errors.New("property maps to itself")
	ErrConfidenceOutOfRange      = errors.New("confidence out of range [0,1]")
	ErrNegativeFrequency         = errors.New("negative frequency")
	ErrMissingConflictReason     = errors.New("conflict status requires a conflict reason")
	ErrInvalidStatusReviewerPair = errors.New("approved status requires reviewer and last-modified")
	ErrUnknownStatus             = errors.New("unknown status")
	ErrUnknownKind               = errors.New("unknown schema kind")

	ErrDanglingReference = errors.New("dangling reference")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("entity not found")
	ErrUnknownDecision   = errors.New("unknown decision")

	ErrUnknownViewMode = errors.New("unknown view mode")
)

// Error is a classified error about one entity.
type Error struct {
	Class    Class
	Entity   string // "schema", "property", "mapping" or "graph"
	EntityID string
	Detail   string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	if e.EntityID == "" {
		return fmt.Sprintf("%s %s", e.Entity, msg)
	}

	return fmt.Sprintf("%s %q: %s", e.Entity, e.EntityID, msg)
}

// Unwrap returns the sentinel.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns a stable snake_case code for diagnostics.
func (e *Error) Code() string {
	return CodeOf(e.Err)
}

// NewError builds a classified error.
func NewError(class Class, entity, id string, sentinel error, detail string) *Error {
	return &Error{Class: class, Entity: entity, EntityID: id, Err: sentinel, Detail: detail}
}

// ClassOf returns the class of err and whether err is a classified error.
func ClassOf(err error) (Class, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Class, true
	}

	return 0, false
}

var codes = map[error]string{
	ErrInvalidParentKind:         "invalid_parent_kind",
	ErrCyclicParent:              "cyclic_parent",
	ErrSelfMapping:               "self_mapping",
	ErrConfidenceOutOfRange:      "confidence_out_of_range",
	ErrNegativeFrequency:         "negative_frequency",
	ErrMissingConflictReason:     "missing_conflict_reason",
	ErrInvalidStatusReviewerPair: "invalid_status_reviewer_pair",
	ErrUnknownStatus:             "unknown_status",
	ErrUnknownKind:               "unknown_kind",
	ErrDanglingReference:         "dangling_reference",
	ErrInvalidTransition:         "invalid_transition",
	ErrNotFound:                  "not_found",
	ErrUnknownDecision:           "unknown_decision",
	ErrUnknownViewMode:           "unknown_view_mode",
}

// CodeOf returns the diagnostic code of the sentinel wrapped by err.
func CodeOf(err error) string {
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return "error"
}
