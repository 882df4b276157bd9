package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemagraph/internal/model"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	sheet := PropertiesSheet(exportIndex(), model.PropertyFilter{})
	require.NoError(t, WriteCSV(&buf, sheet))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, PropertyColumns, records[0])
	assert.Equal(t, `["18 feet","20 feet"]`, records[2][6], "quoted JSON survives the round trip")
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sheets := Build(exportIndex(), Options{IncludeProperties: true, IncludeMappings: true})

	paths, err := WriteDir(dir, sheets)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "properties.csv"), filepath.Join(dir, "mappings.csv")}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mapping ID,Local Property")
}
