// Package index builds the derived lookup structures the diagram projector
// and the workflow engine read from: schema children, global-property fan-in,
// jurisdiction buckets and per-document mappings.
//
// An Index holds identifiers and a reference to the collection it was built
// from. It never copies entity payloads. Dangling identifiers are skipped and
// recorded as warnings, so a build over best-effort extraction output always
// succeeds.
package index
