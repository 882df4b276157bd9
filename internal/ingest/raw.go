package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// RawDocument is one document of the raw-data export.
type RawDocument struct {
	JurisdictionID    string         `json:"jurisdiction_id"`
	JurisdictionName  string         `json:"jurisdiction_name"`
	JurisdictionLevel string         `json:"jurisdiction_level"`
	Title             string         `json:"title"`
	URL               string         `json:"url"`
	Type              string         `json:"type"`
	FilePath          string         `json:"file_path,omitempty"`
	ContentHash       string         `json:"content_hash"`
	ExtractionDate    string         `json:"extraction_date"`
	QualityScore      float64        `json:"quality_score"`
	ConfidenceScore   float64        `json:"confidence_score"`
	ExtractedData     map[string]any `json:"extracted_data"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Export is the top-level raw-data export document.
type Export struct {
	Documents []RawDocument `json:"documents"`
}

// ParseExport decodes an export from r.
func ParseExport(r io.Reader) (*Export, error) {
	var exp Export

	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(&exp); err != nil {
		return nil, fmt.Errorf("failed to decode raw export: %w", err)
	}

	return &exp, nil
}

// LoadExport reads and decodes the export file at path.
func LoadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw export: %w", err)
	}
	defer f.Close()

	exp, err := ParseExport(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return exp, nil
}

// extractionLayouts are the timestamp layouts accepted for extraction_date.
var extractionLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseExtractionDate parses the ISO-8601 forms the extraction pipeline
// writes. Timestamps without a zone are taken as UTC.
func parseExtractionDate(s string) (time.Time, error) {
	for _, layout := range extractionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized extraction date %q", s)
}
