// Package model defines the entities of the schema-relationship model:
// global and document schemas, their properties, and the mappings that
// connect a local property to a global one.
//
// # Entities
//
//   - Schema: a global (canonical) or document (jurisdiction-local) set of
//     properties, optionally inheriting from a global parent.
//   - Property: one named attribute of a schema with extraction statistics
//     and a review status.
//   - Mapping: a directed correspondence from a local property to a global
//     property, with confidence, review status and an optional
//     transformation rule.
//
// # Validation
//
// ValidateSchema, ValidateProperty and ValidateMapping are pure structural
// checks. They return a *Error of class ClassStructural wrapping one of the
// package sentinels, so callers can match with errors.Is. Whether a failure
// blocks ingestion is the caller's decision; ValidateCollection partitions a
// collection into accepted entities and a diagnostic report.
//
// Dangling identifiers are not structural errors. They are reported by the
// relationship index as warnings.
package model
