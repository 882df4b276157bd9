// Package workflow applies reviewer decisions to properties and mappings.
//
// The Engine owns one relationship index. Every accepted decision stamps the
// reviewer and the engine clock onto the entity, patches the index and
// recomputes the aggregate status counts before returning. Bulk decisions
// treat each id independently: a rejected item is reported in the result
// and never rolls back the others.
//
// The engine is not safe for concurrent use; callers serialize decisions.
package workflow
