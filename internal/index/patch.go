package index

import (
	"schemagraph/internal/model"
)

// PatchProperty replaces the stored property with the same id. Derived
// lists are rebuilt only when the owning schema changed.
func (idx *Index) PatchProperty(p model.Property) error {
	pos, ok := idx.propertyPos[p.ID]
	if !ok {
		return model.NewError(model.ClassTransition, "property", p.ID, model.ErrNotFound, "")
	}

	old := idx.coll.Properties[pos]
	idx.coll.Properties[pos] = p

	if old.Schema != p.Schema {
		idx.rebuild()
	}

	idx.version++

	return nil
}

// PatchMapping replaces the stored mapping with the same id. Derived lists
// are rebuilt only when one of its references changed.
func (idx *Index) PatchMapping(m model.Mapping) error {
	pos, ok := idx.mappingPos[m.ID]
	if !ok {
		return model.NewError(model.ClassTransition, "mapping", m.ID, model.ErrNotFound, "")
	}

	old := idx.coll.Mappings[pos]
	idx.coll.Mappings[pos] = m

	if old.SourceSchema != m.SourceSchema || old.SourceProperty != m.SourceProperty ||
		old.TargetProperty != m.TargetProperty {
		idx.rebuild()
	}

	idx.version++

	return nil
}

// Snapshot returns an index over a deep copy of the collection. Projections
// that may overlap with later patches should run against a snapshot.
func (idx *Index) Snapshot() *Index {
	snap := Build(idx.coll.Clone())
	snap.version = idx.version

	return snap
}

func (idx *Index) rebuild() {
	version := idx.version
	*idx = *Build(idx.coll)
	idx.version = version
}
