package model

import (
	"fmt"
	"strings"

	"schemagraph/internal/common"
	"schemagraph/internal/diagnostic"
)

const (
	entitySchema   = "schema"
	entityProperty = "property"
	entityMapping  = "mapping"
)

// ValidateSchema checks the parent-kind invariant and walks the parent chain
// to detect cycles. known maps schema ids to schemas; a parent missing from
// known ends the walk without error.
func ValidateSchema(s *Schema, known map[string]*Schema) error {
	if !s.Kind.IsValid() {
		return structural(entitySchema, s.ID, ErrUnknownKind, fmt.Sprintf("%q", s.Kind))
	}

	if s.Parent == "" {
		return nil
	}

	if s.Parent == s.ID {
		return structural(entitySchema, s.ID, ErrCyclicParent, "schema is its own parent")
	}

	parent, ok := known[s.Parent]
	if !ok {
		return nil
	}

	if parent.Kind != KindGlobal {
		return structural(entitySchema, s.ID, ErrInvalidParentKind,
			fmt.Sprintf("parent %q is a %s schema", parent.ID, parent.Kind))
	}

	// A chain longer than the number of known schemas must revisit one.
	cur := parent
	for steps := 0; cur.Parent != ""; steps++ {
		if cur.Parent == s.ID {
			return structural(entitySchema, s.ID, ErrCyclicParent,
				fmt.Sprintf("chain returns through %q", cur.ID))
		}

		if steps > len(known) {
			return structural(entitySchema, s.ID, ErrCyclicParent,
				fmt.Sprintf("ancestor chain of %q does not terminate", parent.ID))
		}

		next, ok := known[cur.Parent]
		if !ok {
			break
		}

		cur = next
	}

	return nil
}

// ValidateProperty checks the confidence range, frequency and the
// self-mapping invariant.
func ValidateProperty(p *Property) error {
	if !p.Status.IsValid() {
		return structural(entityProperty, p.ID, ErrUnknownStatus, fmt.Sprintf("%q", p.Status))
	}

	if !inUnitRange(p.Confidence) {
		return structural(entityProperty, p.ID, ErrConfidenceOutOfRange, fmt.Sprintf("%v", p.Confidence))
	}

	if p.Frequency < 0 {
		return structural(entityProperty, p.ID, ErrNegativeFrequency, fmt.Sprintf("%d", p.Frequency))
	}

	if p.MappedTo.Contains(p.ID) {
		return structural(entityProperty, p.ID, ErrSelfMapping, "")
	}

	return nil
}

// ValidateMapping checks the conflict-reason and reviewer invariants.
func ValidateMapping(m *Mapping) error {
	if !m.Status.IsValid() {
		return structural(entityMapping, m.ID, ErrUnknownStatus, fmt.Sprintf("%q", m.Status))
	}

	if !inUnitRange(m.Confidence) {
		return structural(entityMapping, m.ID, ErrConfidenceOutOfRange, fmt.Sprintf("%v", m.Confidence))
	}

	if m.Status == MappingConflict && strings.TrimSpace(m.ConflictReason) == "" {
		return structural(entityMapping, m.ID, ErrMissingConflictReason, "")
	}

	if m.Status == MappingApproved && (m.Reviewer == "" || m.LastModified.IsZero()) {
		return structural(entityMapping, m.ID, ErrInvalidStatusReviewerPair, "")
	}

	return nil
}

// ValidateCollection runs every validator and returns the entities that
// passed. Each rejected entity is reported as an error diagnostic.
func ValidateCollection(c *Collection) (*Collection, *diagnostic.Diagnostics) {
	pos, diags := acceptedPositions(c)
	accepted := &Collection{}

	for _, i := range pos.schemas {
		accepted.Schemas = append(accepted.Schemas, c.Schemas[i])
	}

	for _, i := range pos.properties {
		accepted.Properties = append(accepted.Properties, c.Properties[i])
	}

	for _, i := range pos.mappings {
		accepted.Mappings = append(accepted.Mappings, c.Mappings[i])
	}

	return accepted, diags
}

// MergeAccepted writes accepted, the result of ValidateCollection(c) after
// any in-place updates, back over the entries of c it was drawn from.
// Entities that failed validation are left untouched.
func MergeAccepted(c, accepted *Collection) error {
	pos, _ := acceptedPositions(c)

	if len(pos.schemas) != len(accepted.Schemas) || len(pos.properties) != len(accepted.Properties) ||
		len(pos.mappings) != len(accepted.Mappings) {
		return fmt.Errorf("accepted collection has %d/%d/%d entities, want %d/%d/%d",
			len(accepted.Schemas), len(accepted.Properties), len(accepted.Mappings),
			len(pos.schemas), len(pos.properties), len(pos.mappings))
	}

	for k, i := range pos.schemas {
		if c.Schemas[i].ID != accepted.Schemas[k].ID {
			return fmt.Errorf("schema %q does not line up with %q", accepted.Schemas[k].ID, c.Schemas[i].ID)
		}

		c.Schemas[i] = accepted.Schemas[k]
	}

	for k, i := range pos.properties {
		if c.Properties[i].ID != accepted.Properties[k].ID {
			return fmt.Errorf("property %q does not line up with %q", accepted.Properties[k].ID, c.Properties[i].ID)
		}

		c.Properties[i] = accepted.Properties[k]
	}

	for k, i := range pos.mappings {
		if c.Mappings[i].ID != accepted.Mappings[k].ID {
			return fmt.Errorf("mapping %q does not line up with %q", accepted.Mappings[k].ID, c.Mappings[i].ID)
		}

		c.Mappings[i] = accepted.Mappings[k]
	}

	return nil
}

type positions struct {
	schemas, properties, mappings []int
}

// acceptedPositions returns the positions in c of the entities that pass
// validation, in collection order.
func acceptedPositions(c *Collection) (positions, *diagnostic.Diagnostics) {
	var pos positions

	diags := &diagnostic.Diagnostics{}
	known := c.SchemaMap()

	for i := range c.Schemas {
		if err := ValidateSchema(&c.Schemas[i], known); err != nil {
			diags.AddErrorFrom(CodeOf(err), err, entitySchema, c.Schemas[i].ID)
			continue
		}

		pos.schemas = append(pos.schemas, i)
	}

	for i := range c.Properties {
		if err := ValidateProperty(&c.Properties[i]); err != nil {
			diags.AddErrorFrom(CodeOf(err), err, entityProperty, c.Properties[i].ID)
			continue
		}

		pos.properties = append(pos.properties, i)
	}

	for i := range c.Mappings {
		if err := ValidateMapping(&c.Mappings[i]); err != nil {
			diags.AddErrorFrom(CodeOf(err), err, entityMapping, c.Mappings[i].ID)
			continue
		}

		pos.mappings = append(pos.mappings, i)
	}

	return pos, diags
}

func structural(entity, id string, sentinel error, detail string) error {
	return NewError(ClassStructural, entity, id, sentinel, detail)
}

func inUnitRange(v float64) bool {
	return common.IsUnitInterval(v)
}
