package model

import "slices"

// PropertyFilter selects properties for the export collaborator.
// Zero values select everything.
type PropertyFilter struct {
	Statuses      []PropertyStatus
	MinConfidence float64
	Schema        string
}

// Match returns true if p passes the filter.
func (f PropertyFilter) Match(p *Property) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
		return false
	}

	if p.Confidence < f.MinConfidence {
		return false
	}

	return f.Schema == "" || p.Schema == f.Schema
}

// MappingFilter selects mappings for the export collaborator.
// Zero values select everything.
type MappingFilter struct {
	Statuses      []MappingStatus
	MinConfidence float64
	Jurisdiction  string
}

// Match returns true if m passes the filter.
func (f MappingFilter) Match(m *Mapping) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, m.Status) {
		return false
	}

	if m.Confidence < f.MinConfidence {
		return false
	}

	return f.Jurisdiction == "" || m.Jurisdiction == f.Jurisdiction
}

// FilterProperties returns the properties matching f in collection order.
func (c *Collection) FilterProperties(f PropertyFilter) []Property {
	var out []Property

	for i := range c.Properties {
		if f.Match(&c.Properties[i]) {
			out = append(out, c.Properties[i])
		}
	}

	return out
}

// FilterMappings returns the mappings matching f in collection order.
func (c *Collection) FilterMappings(f MappingFilter) []Mapping {
	var out []Mapping

	for i := range c.Mappings {
		if f.Match(&c.Mappings[i]) {
			out = append(out, c.Mappings[i])
		}
	}

	return out
}
