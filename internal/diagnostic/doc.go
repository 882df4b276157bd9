// Package diagnostic provides structured errors, warnings and infos
// collected while validating entities and building the relationship index.
//
// Key capabilities:
//   - Structural rejections with the offending entity id
//   - Referential warnings for dangling ids that were skipped
//   - Duplicate mapping flags for re-review
//   - A combined error value that keeps the underlying errors for errors.Is
package diagnostic
