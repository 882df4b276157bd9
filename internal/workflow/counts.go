package workflow

import (
	"schemagraph/internal/common"
	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Counts holds the number of entities in each review status.
type Counts struct {
	Properties map[model.PropertyStatus]int `json:"properties" yaml:"properties"`
	Mappings   map[model.MappingStatus]int  `json:"mappings" yaml:"mappings"`
}

// Pending returns the number of entities still waiting for a decision,
// including properties flagged for review and mappings in conflict.
func (c Counts) Pending() int {
	return c.Properties[model.PropertyPending] + c.Properties[model.PropertyNeedsReview] +
		c.Mappings[model.MappingPending] + c.Mappings[model.MappingConflict]
}

// Approved returns the number of approved properties and mappings.
func (c Counts) Approved() int {
	return c.Properties[model.PropertyApproved] + c.Mappings[model.MappingApproved]
}

// Conflicts returns the number of mappings in conflict.
func (c Counts) Conflicts() int {
	return c.Mappings[model.MappingConflict]
}

func (c Counts) clone() Counts {
	out := Counts{
		Properties: make(map[model.PropertyStatus]int, len(c.Properties)),
		Mappings:   make(map[model.MappingStatus]int, len(c.Mappings)),
	}

	for k, v := range c.Properties {
		out.Properties[k] = v
	}

	for k, v := range c.Mappings {
		out.Mappings[k] = v
	}

	return out
}

// CountIndex counts the indexed entities by status. Every known status is
// present in the result, with zero when unused.
func CountIndex(idx *index.Index) Counts {
	c := Counts{
		Properties: make(map[model.PropertyStatus]int, len(model.PropertyStatuses)),
		Mappings:   make(map[model.MappingStatus]int, len(model.MappingStatuses)),
	}

	for _, s := range model.PropertyStatuses {
		c.Properties[s] = 0
	}

	for _, s := range model.MappingStatuses {
		c.Mappings[s] = 0
	}

	coll := idx.Collection()

	for i := range coll.Properties {
		p := &coll.Properties[i]
		if idx.Property(p.ID) == p {
			c.Properties[p.Status]++
		}
	}

	for i := range coll.Mappings {
		m := &coll.Mappings[i]
		if idx.Mapping(m.ID) == m {
			c.Mappings[m.Status]++
		}
	}

	return c
}

// JurisdictionSummary breaks one jurisdiction bucket down by entity.
type JurisdictionSummary struct {
	Schemas    int    `json:"schemas" yaml:"schemas"`
	Properties int    `json:"properties" yaml:"properties"`
	Mappings   int    `json:"mappings" yaml:"mappings"`
	Counts     Counts `json:"counts" yaml:"counts"`
}

// Summary is the status and jurisdiction breakdown shown on the dashboard.
type Summary struct {
	Schemas         int                            `json:"schemas" yaml:"schemas"`
	GlobalSchemas   int                            `json:"global_schemas" yaml:"global_schemas"`
	DocumentSchemas int                            `json:"document_schemas" yaml:"document_schemas"`
	Totals          Counts                         `json:"totals" yaml:"totals"`
	Jurisdictions   map[string]JurisdictionSummary `json:"jurisdictions" yaml:"jurisdictions"`
	Warnings        int                            `json:"warnings" yaml:"warnings"`
}

// JurisdictionNames returns the summarized bucket names, sorted.
func (s Summary) JurisdictionNames() []string {
	return common.SortedKeys(s.Jurisdictions)
}

// Summarize builds the status and jurisdiction breakdown of idx. Properties
// count towards the bucket of their owning schema, mappings towards the
// bucket of their source schema.
func Summarize(idx *index.Index) Summary {
	s := Summary{
		Schemas:         len(idx.SchemaIDs()),
		GlobalSchemas:   len(idx.GlobalSchemaIDs()),
		DocumentSchemas: len(idx.DocumentSchemaIDs()),
		Totals:          CountIndex(idx),
		Jurisdictions:   make(map[string]JurisdictionSummary),
		Warnings:        len(idx.Warnings().Warnings),
	}

	for _, name := range idx.Jurisdictions() {
		js := JurisdictionSummary{
			Counts: Counts{
				Properties: make(map[model.PropertyStatus]int),
				Mappings:   make(map[model.MappingStatus]int),
			},
		}

		for _, sid := range idx.Bucket(name) {
			js.Schemas++

			for _, pid := range idx.Schema(sid).Properties {
				p := idx.Property(pid)
				if p == nil || p.Schema != sid {
					continue
				}

				js.Properties++
				js.Counts.Properties[p.Status]++
			}

			for _, mid := range idx.DocumentMappings(sid) {
				js.Mappings++
				js.Counts.Mappings[idx.Mapping(mid).Status]++
			}
		}

		s.Jurisdictions[name] = js
	}

	return s
}
