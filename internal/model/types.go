package model

import (
	"slices"
	"time"
)

// GlobalJurisdiction is the bucket for schemas without an explicit jurisdiction.
const GlobalJurisdiction = "Global"

// Schema is one coherent set of properties, either global or document-local.
type Schema struct {
	ID      string     `yaml:"id" json:"id"`
	Name    string     `yaml:"name" json:"name"`
	Version string     `yaml:"version,omitempty" json:"version,omitempty"`
	Kind    SchemaKind `yaml:"kind" json:"kind"`
	// Jurisdiction is empty (or "Global") for global schemas.
	Jurisdiction string `yaml:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	// Properties lists owned property ids in document order.
	Properties []string `yaml:"properties,omitempty" json:"properties,omitempty"`
	// Parent is the inherited global schema (global kind) or the global
	// schema this document maps into (document kind).
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`

	DocumentTitle  string    `yaml:"document_title,omitempty" json:"document_title,omitempty"`
	DocumentSource string    `yaml:"document_source,omitempty" json:"document_source,omitempty"`
	ExtractedAt    time.Time `yaml:"extracted_at,omitempty" json:"extracted_at,omitempty"`
	CreatedAt      time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

// IsGlobal reports whether the schema is canonical.
func (s *Schema) IsGlobal() bool {
	return s.Kind == KindGlobal
}

// JurisdictionBucket returns the jurisdiction grouping key of the schema.
func (s *Schema) JurisdictionBucket() string {
	if s.Jurisdiction == "" {
		return GlobalJurisdiction
	}

	return s.Jurisdiction
}

// Constraint restricts the values a property may take.
type Constraint struct {
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Allowed []string `yaml:"allowed,omitempty" json:"allowed,omitempty"`
}

// Property is one named attribute within a schema.
type Property struct {
	ID          string        `yaml:"id" json:"id"`
	Schema      string        `yaml:"schema" json:"schema"`
	Name        string        `yaml:"name" json:"name"`
	Type        string        `yaml:"type,omitempty" json:"type,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Unit        string        `yaml:"unit,omitempty" json:"unit,omitempty"`
	Examples    StringOrArray `yaml:"examples,omitempty" json:"examples,omitempty"`
	Constraint  *Constraint   `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	// Frequency is the number of source documents exhibiting the property.
	Frequency  int           `yaml:"frequency" json:"frequency"`
	Confidence float64       `yaml:"confidence" json:"confidence"`
	Sources    StringOrArray `yaml:"sources,omitempty" json:"sources,omitempty"`
	// MappedTo lists cross-schema property ids.
	MappedTo StringOrArray  `yaml:"mapped_to,omitempty" json:"mapped_to,omitempty"`
	Status   PropertyStatus `yaml:"status" json:"status"`

	Reviewer     string    `yaml:"reviewer,omitempty" json:"reviewer,omitempty"`
	LastModified time.Time `yaml:"last_modified,omitempty" json:"last_modified,omitempty"`
	Notes        string    `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// NormalizationRule is one string normalization step of a transformation.
type NormalizationRule string

const (
	NormalizeLowercase     NormalizationRule = "lowercase"
	NormalizeUppercase     NormalizationRule = "uppercase"
	NormalizeTrim          NormalizationRule = "trim"
	NormalizeCollapseSpace NormalizationRule = "collapse_space"
)

// IsValid returns true if r is a known normalization rule.
func (r NormalizationRule) IsValid() bool {
	switch r {
	case NormalizeLowercase, NormalizeUppercase, NormalizeTrim, NormalizeCollapseSpace:
		return true
	default:
		return false
	}
}

// UnitConversion converts a local numeric value as value*Factor + Offset.
type UnitConversion struct {
	Factor   float64 `yaml:"factor" json:"factor"`
	Offset   float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	FromUnit string  `yaml:"from_unit,omitempty" json:"from_unit,omitempty"`
	ToUnit   string  `yaml:"to_unit,omitempty" json:"to_unit,omitempty"`
}

// TransformRule converts a local value into the global representation.
type TransformRule struct {
	UnitConversion *UnitConversion     `yaml:"unit_conversion,omitempty" json:"unit_conversion,omitempty"`
	Normalize      []NormalizationRule `yaml:"normalize,omitempty" json:"normalize,omitempty"`
}

// IsEmpty returns true if the rule does nothing.
func (r *TransformRule) IsEmpty() bool {
	return r == nil || (r.UnitConversion == nil && len(r.Normalize) == 0)
}

// Mapping is a directed correspondence from one local property to one
// global property.
type Mapping struct {
	ID             string         `yaml:"id" json:"id"`
	SourceSchema   string         `yaml:"source_schema" json:"source_schema"`
	SourceProperty string         `yaml:"source_property" json:"source_property"`
	TargetProperty string         `yaml:"target_property" json:"target_property"`
	Jurisdiction   string         `yaml:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	Confidence     float64        `yaml:"confidence" json:"confidence"`
	Status         MappingStatus  `yaml:"status" json:"status"`
	Transform      *TransformRule `yaml:"transform,omitempty" json:"transform,omitempty"`
	// ConflictReason stays readable after the conflict is resolved.
	ConflictReason string    `yaml:"conflict_reason,omitempty" json:"conflict_reason,omitempty"`
	LastModified   time.Time `yaml:"last_modified,omitempty" json:"last_modified,omitempty"`
	Reviewer       string    `yaml:"reviewer,omitempty" json:"reviewer,omitempty"`
	Notes          string    `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Collection is a flat set of entities handed to the core by the
// persistence or ingestion collaborator.
type Collection struct {
	Schemas    []Schema   `yaml:"schemas" json:"schemas"`
	Properties []Property `yaml:"properties" json:"properties"`
	Mappings   []Mapping  `yaml:"mappings" json:"mappings"`
}

// Len returns the total entity count.
func (c *Collection) Len() int {
	return len(c.Schemas) + len(c.Properties) + len(c.Mappings)
}

// IsEmpty returns true if the collection holds no entities.
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// SchemaMap returns the schemas keyed by id. Later duplicates are ignored.
func (c *Collection) SchemaMap() map[string]*Schema {
	m := make(map[string]*Schema, len(c.Schemas))
	for i := range c.Schemas {
		if _, ok := m[c.Schemas[i].ID]; !ok {
			m[c.Schemas[i].ID] = &c.Schemas[i]
		}
	}

	return m
}

// Merge appends the entities of other.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}

	c.Schemas = append(c.Schemas, other.Schemas...)
	c.Properties = append(c.Properties, other.Properties...)
	c.Mappings = append(c.Mappings, other.Mappings...)
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Schemas:    make([]Schema, len(c.Schemas)),
		Properties: make([]Property, len(c.Properties)),
		Mappings:   make([]Mapping, len(c.Mappings)),
	}

	for i, s := range c.Schemas {
		s.Properties = slices.Clone(s.Properties)
		out.Schemas[i] = s
	}

	for i, p := range c.Properties {
		p.Examples = slices.Clone(p.Examples)
		p.Sources = slices.Clone(p.Sources)
		p.MappedTo = slices.Clone(p.MappedTo)

		if p.Constraint != nil {
			cons := *p.Constraint
			cons.Allowed = slices.Clone(cons.Allowed)
			cons.Min = cloneFloat(cons.Min)
			cons.Max = cloneFloat(cons.Max)
			p.Constraint = &cons
		}

		out.Properties[i] = p
	}

	for i, m := range c.Mappings {
		if m.Transform != nil {
			rule := *m.Transform
			rule.Normalize = slices.Clone(rule.Normalize)

			if rule.UnitConversion != nil {
				uc := *rule.UnitConversion
				rule.UnitConversion = &uc
			}

			m.Transform = &rule
		}

		out.Mappings[i] = m
	}

	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}

	v := *f

	return &v
}
