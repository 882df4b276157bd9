package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaIndex(schemas ...Schema) map[string]*Schema {
	c := &Collection{Schemas: schemas}
	return c.SchemaMap()
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		schemas []Schema
		check   string
		wantErr error
	}{
		{
			name:    "global without parent",
			schemas: []Schema{{ID: "G", Kind: KindGlobal}},
			check:   "G",
		},
		{
			name: "document into global",
			schemas: []Schema{
				{ID: "G", Kind: KindGlobal},
				{ID: "NYC", Kind: KindDocument, Jurisdiction: "New York City", Parent: "G"},
			},
			check: "NYC",
		},
		{
			name: "global inherits global",
			schemas: []Schema{
				{ID: "base", Kind: KindGlobal},
				{ID: "clearances", Kind: KindGlobal, Parent: "base"},
			},
			check: "clearances",
		},
		{
			name: "global under document is inverted",
			schemas: []Schema{
				{ID: "NYC", Kind: KindDocument},
				{ID: "G", Kind: KindGlobal, Parent: "NYC"},
			},
			check:   "G",
			wantErr: ErrInvalidParentKind,
		},
		{
			name: "document under document",
			schemas: []Schema{
				{ID: "SF", Kind: KindDocument},
				{ID: "NYC", Kind: KindDocument, Parent: "SF"},
			},
			check:   "NYC",
			wantErr: ErrInvalidParentKind,
		},
		{
			name: "two-cycle",
			schemas: []Schema{
				{ID: "A", Kind: KindGlobal, Parent: "B"},
				{ID: "B", Kind: KindGlobal, Parent: "A"},
			},
			check:   "A",
			wantErr: ErrCyclicParent,
		},
		{
			name:    "self parent",
			schemas: []Schema{{ID: "A", Kind: KindGlobal, Parent: "A"}},
			check:   "A",
			wantErr: ErrCyclicParent,
		},
		{
			name: "cycle among ancestors",
			schemas: []Schema{
				{ID: "A", Kind: KindGlobal, Parent: "B"},
				{ID: "B", Kind: KindGlobal, Parent: "C"},
				{ID: "C", Kind: KindGlobal, Parent: "B"},
			},
			check:   "A",
			wantErr: ErrCyclicParent,
		},
		{
			name:    "unknown parent is not structural",
			schemas: []Schema{{ID: "A", Kind: KindGlobal, Parent: "missing"}},
			check:   "A",
		},
		{
			name:    "unknown kind",
			schemas: []Schema{{ID: "A", Kind: "local"}},
			check:   "A",
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known := schemaIndex(tt.schemas...)
			err := ValidateSchema(known[tt.check], known)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			class, ok := ClassOf(err)
			require.True(t, ok)
			assert.Equal(t, ClassStructural, class)
		})
	}
}

func TestValidateProperty(t *testing.T) {
	base := func() Property {
		return Property{ID: "p_vert", Schema: "G", Name: "vertical_clearance", Confidence: 0.8, Frequency: 3, Status: PropertyPending}
	}

	tests := []struct {
		name    string
		mutate  func(p *Property)
		wantErr error
	}{
		{name: "valid", mutate: func(*Property) {}},
		{name: "confidence bounds inclusive", mutate: func(p *Property) { p.Confidence = 1 }},
		{name: "confidence above one", mutate: func(p *Property) { p.Confidence = 1.01 }, wantErr: ErrConfidenceOutOfRange},
		{name: "confidence negative", mutate: func(p *Property) { p.Confidence = -0.1 }, wantErr: ErrConfidenceOutOfRange},
		{name: "confidence NaN", mutate: func(p *Property) { p.Confidence = math.NaN() }, wantErr: ErrConfidenceOutOfRange},
		{name: "self mapping", mutate: func(p *Property) { p.MappedTo = StringOrArray{"other", "p_vert"} }, wantErr: ErrSelfMapping},
		{name: "negative frequency", mutate: func(p *Property) { p.Frequency = -1 }, wantErr: ErrNegativeFrequency},
		{name: "unknown status", mutate: func(p *Property) { p.Status = "conflict" }, wantErr: ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(&p)

			err := ValidateProperty(&p)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateMapping(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		m       Mapping
		wantErr error
	}{
		{
			name: "pending",
			m:    Mapping{ID: "m1", Confidence: 0.9, Status: MappingPending},
		},
		{
			name:    "conflict without reason",
			m:       Mapping{ID: "m1", Confidence: 0.9, Status: MappingConflict, ConflictReason: "  "},
			wantErr: ErrMissingConflictReason,
		},
		{
			name: "conflict with reason",
			m:    Mapping{ID: "m1", Confidence: 0.9, Status: MappingConflict, ConflictReason: "unit mismatch"},
		},
		{
			name:    "approved without reviewer",
			m:       Mapping{ID: "m1", Confidence: 0.9, Status: MappingApproved, LastModified: now},
			wantErr: ErrInvalidStatusReviewerPair,
		},
		{
			name:    "approved without timestamp",
			m:       Mapping{ID: "m1", Confidence: 0.9, Status: MappingApproved, Reviewer: "alice"},
			wantErr: ErrInvalidStatusReviewerPair,
		},
		{
			name: "approved with both",
			m:    Mapping{ID: "m1", Confidence: 0.9, Status: MappingApproved, Reviewer: "alice", LastModified: now},
		},
		{
			name:    "confidence out of range",
			m:       Mapping{ID: "m1", Confidence: 2, Status: MappingPending},
			wantErr: ErrConfidenceOutOfRange,
		},
		{
			name:    "needs_review is property-only",
			m:       Mapping{ID: "m1", Confidence: 0.5, Status: "needs_review"},
			wantErr: ErrUnknownStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMapping(&tt.m)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCollection_PartitionsRejected(t *testing.T) {
	c := &Collection{
		Schemas: []Schema{
			{ID: "A", Kind: KindGlobal, Parent: "B"},
			{ID: "B", Kind: KindGlobal, Parent: "A"},
			{ID: "G", Kind: KindGlobal},
		},
		Properties: []Property{
			{ID: "ok", Schema: "G", Confidence: 0.5, Status: PropertyPending},
			{ID: "self", Schema: "G", Confidence: 0.5, Status: PropertyPending, MappedTo: StringOrArray{"self"}},
		},
		Mappings: []Mapping{
			{ID: "m1", Confidence: 0.5, Status: MappingConflict},
			{ID: "m2", Confidence: 0.5, Status: MappingPending},
		},
	}

	accepted, diags := ValidateCollection(c)

	require.Len(t, accepted.Schemas, 1)
	assert.Equal(t, "G", accepted.Schemas[0].ID)
	require.Len(t, accepted.Properties, 1)
	assert.Equal(t, "ok", accepted.Properties[0].ID)
	require.Len(t, accepted.Mappings, 1)
	assert.Equal(t, "m2", accepted.Mappings[0].ID)

	require.Len(t, diags.Errors, 4)
	assert.Equal(t, "cyclic_parent", diags.Errors[0].Code)
	assert.Equal(t, "self_mapping", diags.Errors[2].Code)
	assert.Equal(t, "missing_conflict_reason", diags.Errors[3].Code)

	err := diags.Error()
	assert.True(t, errors.Is(err, ErrCyclicParent))
	assert.True(t, errors.Is(err, ErrMissingConflictReason))
}

func TestMergeAccepted(t *testing.T) {
	c := &Collection{
		Schemas: []Schema{{ID: "G", Kind: KindGlobal}},
		Mappings: []Mapping{
			{ID: "dup", Confidence: 0.5, Status: MappingConflict},
			{ID: "dup", Confidence: 0.7, Status: MappingPending},
			{ID: "m2", Confidence: 0.5, Status: MappingPending},
		},
	}

	accepted, _ := ValidateCollection(c)
	require.Len(t, accepted.Mappings, 2)

	reviewedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	accepted.Mappings[0].Status = MappingApproved
	accepted.Mappings[0].Reviewer = "alice"
	accepted.Mappings[0].LastModified = reviewedAt

	require.NoError(t, MergeAccepted(c, accepted))

	require.Len(t, c.Mappings, 3)
	assert.Equal(t, MappingConflict, c.Mappings[0].Status, "invalid entry is kept as is")
	assert.Equal(t, MappingApproved, c.Mappings[1].Status)
	assert.Equal(t, "alice", c.Mappings[1].Reviewer)
	assert.Equal(t, MappingPending, c.Mappings[2].Status)

	accepted.Mappings = accepted.Mappings[:1]
	assert.Error(t, MergeAccepted(c, accepted))
}

func TestError_Message(t *testing.T) {
	err := NewError(ClassTransition, "mapping", "m7", ErrInvalidTransition, "rejected -> approved")
	assert.Equal(t, `mapping "m7": invalid status transition: rejected -> approved`, err.Error())
	assert.Equal(t, "invalid_transition", err.Code())
	assert.Equal(t, "transition", ClassTransition.String())
}
