package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCollection_FilterMappings(t *testing.T) {
	c := &Collection{Mappings: []Mapping{
		{ID: "m1", Confidence: 0.95, Status: MappingPending, Jurisdiction: "NYC"},
		{ID: "m2", Confidence: 0.40, Status: MappingPending, Jurisdiction: "NYC"},
		{ID: "m3", Confidence: 0.99, Status: MappingConflict, Jurisdiction: "SF", ConflictReason: "x"},
	}}

	got := c.FilterMappings(MappingFilter{MinConfidence: 0.5})
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m3", got[1].ID)

	got = c.FilterMappings(MappingFilter{Statuses: []MappingStatus{MappingConflict}})
	require.Len(t, got, 1)
	assert.Equal(t, "m3", got[0].ID)

	assert.Len(t, c.FilterMappings(MappingFilter{Jurisdiction: "NYC"}), 2)
	assert.Len(t, c.FilterMappings(MappingFilter{}), 3)
}

func TestCollection_FilterProperties(t *testing.T) {
	c := &Collection{Properties: []Property{
		{ID: "a", Schema: "G", Confidence: 0.7, Status: PropertyApproved},
		{ID: "b", Schema: "NYC", Confidence: 0.7, Status: PropertyNeedsReview},
		{ID: "c", Schema: "NYC", Confidence: 0.2, Status: PropertyNeedsReview},
	}}

	got := c.FilterProperties(PropertyFilter{Statuses: []PropertyStatus{PropertyNeedsReview}, MinConfidence: 0.5})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Len(t, c.FilterProperties(PropertyFilter{Schema: "NYC"}), 2)
}

func TestCollection_CloneIsDeep(t *testing.T) {
	lo := 1.0
	c := &Collection{
		Schemas:    []Schema{{ID: "G", Kind: KindGlobal, Properties: []string{"p"}}},
		Properties: []Property{{ID: "p", Schema: "G", Examples: StringOrArray{"36 in"}, Constraint: &Constraint{Min: &lo}}},
		Mappings:   []Mapping{{ID: "m", Transform: &TransformRule{UnitConversion: &UnitConversion{Factor: 2.54}}}},
	}

	cp := c.Clone()
	cp.Schemas[0].Properties[0] = "changed"
	cp.Properties[0].Examples[0] = "changed"
	*cp.Properties[0].Constraint.Min = 5
	cp.Mappings[0].Transform.UnitConversion.Factor = 1

	assert.Equal(t, "p", c.Schemas[0].Properties[0])
	assert.Equal(t, "36 in", c.Properties[0].Examples[0])
	assert.Equal(t, 1.0, *c.Properties[0].Constraint.Min)
	assert.Equal(t, 2.54, c.Mappings[0].Transform.UnitConversion.Factor)
}

func TestStringOrArray_YAML(t *testing.T) {
	var p struct {
		Examples StringOrArray `yaml:"examples"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("examples: 36 inches\n"), &p))
	assert.Equal(t, StringOrArray{"36 inches"}, p.Examples)

	require.NoError(t, yaml.Unmarshal([]byte("examples: [a, b]\n"), &p))
	assert.Equal(t, StringOrArray{"a", "b"}, p.Examples)

	out, err := yaml.Marshal(StringOrArray{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only\n", string(out))

	err = yaml.Unmarshal([]byte("examples: {a: b}\n"), &p)
	assert.Error(t, err)
}
