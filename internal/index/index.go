package index

import (
	"fmt"
	"slices"

	"schemagraph/internal/common"
	"schemagraph/internal/diagnostic"
	"schemagraph/internal/model"
)

// Warning codes recorded while building.
const (
	WarnDuplicateID       = "duplicate_id"
	WarnDanglingParent    = "dangling_parent"
	WarnDanglingProperty  = "dangling_property"
	WarnDanglingOwner     = "dangling_owner"
	WarnDanglingSource    = "dangling_source_schema"
	WarnDanglingSourceRef = "dangling_source_property"
	WarnDanglingTarget    = "dangling_target_property"
	WarnNonGlobalTarget   = "non_global_target"
	WarnNonDocumentSource = "non_document_source"
	WarnDuplicateMapping  = "duplicate_mapping"
)

// Index is the relationship index over one collection.
type Index struct {
	coll    *model.Collection
	version uint64

	schemaPos   map[string]int
	propertyPos map[string]int
	mappingPos  map[string]int

	children      map[string][]string
	fanIn         map[string][]string
	jurisdictions map[string][]string
	docMappings   map[string][]string

	// sources holds, per global schema, the contributing document schemas.
	sources map[string]map[string]struct{}

	warnings *diagnostic.Diagnostics
}

// Build derives the index from c. It never fails; dangling references are
// excluded from the derived lists and reported through Warnings.
func Build(c *model.Collection) *Index {
	if c == nil {
		c = &model.Collection{}
	}

	idx := &Index{
		coll:          c,
		schemaPos:     make(map[string]int, len(c.Schemas)),
		propertyPos:   make(map[string]int, len(c.Properties)),
		mappingPos:    make(map[string]int, len(c.Mappings)),
		children:      make(map[string][]string),
		fanIn:         make(map[string][]string),
		jurisdictions: make(map[string][]string),
		docMappings:   make(map[string][]string),
		sources:       make(map[string]map[string]struct{}),
		warnings:      &diagnostic.Diagnostics{},
	}

	idx.indexPositions()
	idx.indexSchemas()
	idx.indexMappings()
	idx.sortLists()

	return idx
}

func (idx *Index) indexPositions() {
	for i := range idx.coll.Schemas {
		id := idx.coll.Schemas[i].ID
		if _, dup := idx.schemaPos[id]; dup {
			idx.warnings.AddWarning(WarnDuplicateID, "duplicate schema id, later entry ignored", "schema", id)
			continue
		}

		idx.schemaPos[id] = i
	}

	for i := range idx.coll.Properties {
		id := idx.coll.Properties[i].ID
		if _, dup := idx.propertyPos[id]; dup {
			idx.warnings.AddWarning(WarnDuplicateID, "duplicate property id, later entry ignored", "property", id)
			continue
		}

		idx.propertyPos[id] = i
	}

	for i := range idx.coll.Mappings {
		id := idx.coll.Mappings[i].ID
		if _, dup := idx.mappingPos[id]; dup {
			idx.warnings.AddWarning(WarnDuplicateID, "duplicate mapping id, later entry ignored", "mapping", id)
			continue
		}

		idx.mappingPos[id] = i
	}
}

func (idx *Index) indexSchemas() {
	for _, id := range idx.orderedSchemaIDs() {
		s := idx.Schema(id)

		bucket := s.JurisdictionBucket()
		idx.jurisdictions[bucket] = append(idx.jurisdictions[bucket], s.ID)

		for _, pid := range s.Properties {
			if _, ok := idx.propertyPos[pid]; !ok {
				idx.warnings.AddWarning(WarnDanglingProperty,
					fmt.Sprintf("owned property %q not found", pid), "schema", s.ID)
			}
		}

		if s.Parent == "" {
			continue
		}

		parent := idx.Schema(s.Parent)
		if parent == nil {
			idx.warnings.AddWarning(WarnDanglingParent,
				fmt.Sprintf("parent schema %q not found", s.Parent), "schema", s.ID)
			continue
		}

		idx.children[parent.ID] = append(idx.children[parent.ID], s.ID)

		if !s.IsGlobal() && parent.IsGlobal() {
			idx.addSource(parent.ID, s.ID)
		}
	}

	for i := range idx.coll.Properties {
		p := &idx.coll.Properties[i]
		if idx.propertyPos[p.ID] != i {
			continue
		}

		if _, ok := idx.schemaPos[p.Schema]; !ok {
			idx.warnings.AddWarning(WarnDanglingOwner,
				fmt.Sprintf("owning schema %q not found", p.Schema), "property", p.ID)
		}
	}
}

func (idx *Index) indexMappings() {
	type pair struct{ source, target string }

	seen := make(map[pair]string, len(idx.coll.Mappings))

	for i := range idx.coll.Mappings {
		m := &idx.coll.Mappings[i]
		if idx.mappingPos[m.ID] != i {
			continue
		}

		key := pair{m.SourceProperty, m.TargetProperty}
		if first, dup := seen[key]; dup {
			idx.warnings.AddWarning(WarnDuplicateMapping,
				fmt.Sprintf("same source/target pair as mapping %q", first), "mapping", m.ID)
		} else {
			seen[key] = m.ID
		}

		sourceOK := idx.checkSource(m)
		if sourceOK {
			idx.docMappings[m.SourceSchema] = append(idx.docMappings[m.SourceSchema], m.ID)
		}

		owner, targetOK := idx.checkTarget(m)
		if !targetOK || !sourceOK {
			continue
		}

		idx.fanIn[m.TargetProperty] = append(idx.fanIn[m.TargetProperty], m.ID)
		idx.addSource(owner, m.SourceSchema)
	}
}

// checkSource reports whether the mapping's source property exists and is
// owned by its source schema, which must be a document schema.
func (idx *Index) checkSource(m *model.Mapping) bool {
	src := idx.Schema(m.SourceSchema)
	if src == nil {
		idx.warnings.AddWarning(WarnDanglingSource,
			fmt.Sprintf("source schema %q not found", m.SourceSchema), "mapping", m.ID)

		return false
	}

	if src.IsGlobal() {
		idx.warnings.AddWarning(WarnNonDocumentSource,
			fmt.Sprintf("source schema %q is a global schema", src.ID), "mapping", m.ID)

		return false
	}

	p := idx.Property(m.SourceProperty)
	if p == nil {
		idx.warnings.AddWarning(WarnDanglingSourceRef,
			fmt.Sprintf("source property %q not found", m.SourceProperty), "mapping", m.ID)

		return false
	}

	if p.Schema != src.ID {
		idx.warnings.AddWarning(WarnDanglingSourceRef,
			fmt.Sprintf("source property %q belongs to schema %q, not %q", p.ID, p.Schema, src.ID),
			"mapping", m.ID)

		return false
	}

	return true
}

// checkTarget resolves the owning global schema of the mapping's target.
func (idx *Index) checkTarget(m *model.Mapping) (string, bool) {
	target := idx.Property(m.TargetProperty)
	if target == nil {
		idx.warnings.AddWarning(WarnDanglingTarget,
			fmt.Sprintf("target property %q not found", m.TargetProperty), "mapping", m.ID)

		return "", false
	}

	owner := idx.Schema(target.Schema)
	if owner == nil {
		idx.warnings.AddWarning(WarnDanglingTarget,
			fmt.Sprintf("target property %q has no known schema", m.TargetProperty), "mapping", m.ID)

		return "", false
	}

	if !owner.IsGlobal() {
		idx.warnings.AddWarning(WarnNonGlobalTarget,
			fmt.Sprintf("target property %q belongs to document schema %q", m.TargetProperty, owner.ID),
			"mapping", m.ID)

		return "", false
	}

	return owner.ID, true
}

func (idx *Index) addSource(global, doc string) {
	set, ok := idx.sources[global]
	if !ok {
		set = make(map[string]struct{})
		idx.sources[global] = set
	}

	set[doc] = struct{}{}
}

func (idx *Index) sortLists() {
	for _, m := range []map[string][]string{idx.children, idx.fanIn, idx.jurisdictions, idx.docMappings} {
		for k := range m {
			slices.Sort(m[k])
		}
	}
}

// orderedSchemaIDs returns the indexed schema ids sorted ascending.
func (idx *Index) orderedSchemaIDs() []string {
	return common.SortedKeys(idx.schemaPos)
}
