package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyStatus_CanTransitionTo(t *testing.T) {
	allowed := map[PropertyStatus][]PropertyStatus{
		PropertyPending:     {PropertyApproved, PropertyRejected},
		PropertyNeedsReview: {PropertyApproved, PropertyRejected},
		PropertyApproved:    nil,
		PropertyRejected:    nil,
	}

	for _, from := range PropertyStatuses {
		for _, to := range PropertyStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}

			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.False(t, PropertyStatus("bogus").CanTransitionTo(PropertyApproved))
}

func TestMappingStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, MappingPending.CanTransitionTo(MappingApproved))
	assert.True(t, MappingPending.CanTransitionTo(MappingRejected))
	assert.True(t, MappingConflict.CanTransitionTo(MappingApproved))
	assert.True(t, MappingConflict.CanTransitionTo(MappingRejected))
	assert.False(t, MappingPending.CanTransitionTo(MappingConflict))
	assert.False(t, MappingRejected.CanTransitionTo(MappingApproved))
	assert.False(t, MappingApproved.CanTransitionTo(MappingRejected))
	assert.True(t, MappingRejected.IsTerminal())
	assert.False(t, MappingConflict.IsTerminal())
}

func TestSchema_JurisdictionBucket(t *testing.T) {
	g := Schema{ID: "G", Kind: KindGlobal}
	d := Schema{ID: "NYC", Kind: KindDocument, Jurisdiction: "New York City"}

	assert.Equal(t, GlobalJurisdiction, g.JurisdictionBucket())
	assert.Equal(t, "New York City", d.JurisdictionBucket())
}

func TestParseStatus(t *testing.T) {
	ps, err := ParsePropertyStatus("needs_review")
	require.NoError(t, err)
	assert.Equal(t, PropertyNeedsReview, ps)

	_, err = ParsePropertyStatus("conflict")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	ms, err := ParseMappingStatus("conflict")
	require.NoError(t, err)
	assert.Equal(t, MappingConflict, ms)

	_, err = ParseMappingStatus("needs_review")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
