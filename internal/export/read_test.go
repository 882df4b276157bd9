package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemagraph/internal/model"
)

func TestReadReviews_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, MappingsSheet(exportIndex(), model.MappingFilter{})))

	name, reviews, err := ReadReviews(&buf)
	require.NoError(t, err)
	assert.Equal(t, SheetMappings, name)
	assert.Equal(t, []Review{
		{ID: "m1", Status: "approved", Reviewer: "alice"},
		{ID: "m2", Status: "conflict"},
	}, reviews)

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, PropertiesSheet(exportIndex(), model.PropertyFilter{})))

	name, reviews, err = ReadReviews(&buf)
	require.NoError(t, err)
	assert.Equal(t, SheetProperties, name)
	require.Len(t, reviews, 3)
	assert.Equal(t, Review{ID: "p_low", Status: "needs_review"}, reviews[2])
}

func TestReadReviews_EditedSheet(t *testing.T) {
	sheet := "Status, Mapping ID ,Notes\n" +
		"Approved,m1,looks right\n" +
		",,\n" +
		" rejected ,m2\n"

	name, reviews, err := ReadReviews(strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, SheetMappings, name)
	assert.Equal(t, []Review{
		{ID: "m1", Status: "approved"},
		{ID: "m2", Status: "rejected"},
	}, reviews)
}

func TestReadReviews_Errors(t *testing.T) {
	_, _, err := ReadReviews(strings.NewReader("Name,Status\nx,approved\n"))
	assert.ErrorIs(t, err, ErrUnknownSheet)

	_, _, err = ReadReviews(strings.NewReader("Property ID,Name\np1,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Status column")

	_, _, err = ReadReviews(strings.NewReader(""))
	assert.Error(t, err)
}
