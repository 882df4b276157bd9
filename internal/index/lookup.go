package index

import (
	"slices"

	"schemagraph/internal/common"
	"schemagraph/internal/diagnostic"
	"schemagraph/internal/model"
)

// Collection returns the collection the index was built from.
func (idx *Index) Collection() *model.Collection {
	return idx.coll
}

// Version increases every time the index is patched.
func (idx *Index) Version() uint64 {
	return idx.version
}

// Warnings returns the referential warnings recorded during the build.
func (idx *Index) Warnings() *diagnostic.Diagnostics {
	return idx.warnings
}

// Schema returns the schema with the given id, or nil.
func (idx *Index) Schema(id string) *model.Schema {
	pos, ok := idx.schemaPos[id]
	if !ok {
		return nil
	}

	return &idx.coll.Schemas[pos]
}

// Property returns the property with the given id, or nil.
func (idx *Index) Property(id string) *model.Property {
	pos, ok := idx.propertyPos[id]
	if !ok {
		return nil
	}

	return &idx.coll.Properties[pos]
}

// Mapping returns the mapping with the given id, or nil.
func (idx *Index) Mapping(id string) *model.Mapping {
	pos, ok := idx.mappingPos[id]
	if !ok {
		return nil
	}

	return &idx.coll.Mappings[pos]
}

// SchemaIDs returns every indexed schema id, sorted.
func (idx *Index) SchemaIDs() []string {
	return idx.orderedSchemaIDs()
}

// GlobalSchemaIDs returns the global schema ids, sorted.
func (idx *Index) GlobalSchemaIDs() []string {
	return idx.schemaIDsOfKind(model.KindGlobal)
}

// DocumentSchemaIDs returns the document schema ids, sorted.
func (idx *Index) DocumentSchemaIDs() []string {
	return idx.schemaIDsOfKind(model.KindDocument)
}

func (idx *Index) schemaIDsOfKind(kind model.SchemaKind) []string {
	var out []string

	for _, id := range idx.orderedSchemaIDs() {
		if idx.Schema(id).Kind == kind {
			out = append(out, id)
		}
	}

	return out
}

// Children returns the ids of the schemas whose parent is id, sorted.
func (idx *Index) Children(id string) []string {
	return slices.Clone(idx.children[id])
}

// FanIn returns the ids of the mappings targeting the global property id, sorted.
func (idx *Index) FanIn(propertyID string) []string {
	return slices.Clone(idx.fanIn[propertyID])
}

// DocumentMappings returns the ids of the mappings sourced from the schema, sorted.
func (idx *Index) DocumentMappings(schemaID string) []string {
	return slices.Clone(idx.docMappings[schemaID])
}

// Jurisdictions returns the jurisdiction bucket names, sorted.
func (idx *Index) Jurisdictions() []string {
	return common.SortedKeys(idx.jurisdictions)
}

// Bucket returns the schema ids in the jurisdiction bucket, sorted.
func (idx *Index) Bucket(jurisdiction string) []string {
	return slices.Clone(idx.jurisdictions[jurisdiction])
}

// SourceCount returns the number of document schemas contributing to the
// global schema, through a parent link or a mapping into one of its properties.
func (idx *Index) SourceCount(globalID string) int {
	return len(idx.sources[globalID])
}

// IsTargetResolved reports whether the mapping made it into the fan-in
// lookup, which requires both of its ends to resolve.
func (idx *Index) IsTargetResolved(m *model.Mapping) bool {
	return slices.Contains(idx.fanIn[m.TargetProperty], m.ID)
}
