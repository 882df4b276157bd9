package transform

import (
	"fmt"
	"slices"
	"strings"

	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Value is a document value expressed against a global property.
type Value struct {
	GlobalProperty   string  `json:"global_property" yaml:"global_property"`
	Value            string  `json:"value" yaml:"value"`
	OriginalValue    string  `json:"original_value" yaml:"original_value"`
	OriginalProperty string  `json:"original_property" yaml:"original_property"`
	Mapping          string  `json:"mapping" yaml:"mapping"`
	Confidence       float64 `json:"confidence" yaml:"confidence"`
	SourceDocument   string  `json:"source_document" yaml:"source_document"`
	Jurisdiction     string  `json:"jurisdiction" yaml:"jurisdiction"`
}

// Resolve maps the values of a document schema onto global properties.
//
// values holds local values by property id; a property missing from values
// falls back to its first example. Rejected mappings and mappings whose
// target is not resolved by the index are skipped. When several mappings
// feed one global property the highest confidence wins, then the lowest
// mapping id. Results are sorted by global property id.
func Resolve(idx *index.Index, schemaID string, values map[string]string) ([]Value, error) {
	doc := idx.Schema(schemaID)
	if doc == nil {
		return nil, model.NewError(model.ClassReferential, "schema", schemaID, model.ErrNotFound, "")
	}

	best := make(map[string]Value)

	for _, mid := range idx.DocumentMappings(schemaID) {
		m := idx.Mapping(mid)
		if m.Status == model.MappingRejected || !idx.IsTargetResolved(m) {
			continue
		}

		local, ok := localValue(idx, m.SourceProperty, values)
		if !ok {
			continue
		}

		converted, err := Apply(m.Transform, local)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", m.ID, err)
		}

		v := Value{
			GlobalProperty:   m.TargetProperty,
			Value:            converted,
			OriginalValue:    local,
			OriginalProperty: m.SourceProperty,
			Mapping:          m.ID,
			Confidence:       m.Confidence,
			SourceDocument:   documentName(doc),
			Jurisdiction:     doc.JurisdictionBucket(),
		}

		if prev, seen := best[v.GlobalProperty]; seen && !outranks(v, prev) {
			continue
		}

		best[v.GlobalProperty] = v
	}

	out := make([]Value, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}

	slices.SortFunc(out, func(a, b Value) int {
		return strings.Compare(a.GlobalProperty, b.GlobalProperty)
	})

	return out, nil
}

func localValue(idx *index.Index, propertyID string, values map[string]string) (string, bool) {
	if v, ok := values[propertyID]; ok {
		return v, true
	}

	p := idx.Property(propertyID)
	if p == nil {
		return "", false
	}

	return p.Examples.First(), len(p.Examples) > 0
}

func outranks(a, b Value) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}

	return a.Mapping < b.Mapping
}

func documentName(s *model.Schema) string {
	if s.DocumentTitle != "" {
		return s.DocumentTitle
	}

	if s.Name != "" {
		return s.Name
	}

	return s.ID
}
