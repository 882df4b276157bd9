package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnknownSheet is returned for a CSV whose header is neither the
// properties nor the mappings sheet.
var ErrUnknownSheet = errors.New("not a properties or mappings sheet")

// Review is one row of a reviewed sheet: the entity id with the status and
// reviewer entered in the sheet.
type Review struct {
	ID       string
	Status   string
	Reviewer string
}

// ReadReviews reads a sheet written by WriteCSV back, returning the sheet
// name and one Review per row with an id. Columns are found by header name,
// so reordered or trimmed sheets still read as long as the id and status
// columns remain.
func ReadReviews(r io.Reader) (string, []Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read sheet header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var name string

	idCol, ok := cols["property id"]
	if ok {
		name = SheetProperties
	} else if idCol, ok = cols["mapping id"]; ok {
		name = SheetMappings
	} else {
		return "", nil, ErrUnknownSheet
	}

	statusCol, ok := cols["status"]
	if !ok {
		return "", nil, fmt.Errorf("%s sheet has no Status column", name)
	}

	reviewerCol, hasReviewer := cols["reviewer"]

	var reviews []Review

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s sheet: %w", name, err)
		}

		rv := Review{ID: cell(rec, idCol), Status: strings.ToLower(cell(rec, statusCol))}
		if rv.ID == "" {
			continue
		}

		if hasReviewer {
			rv.Reviewer = cell(rec, reviewerCol)
		}

		reviews = append(reviews, rv)
	}

	return name, reviews, nil
}

// ReadReviewsFile reads the reviewed sheet at path.
func ReadReviewsFile(path string) (string, []Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	return ReadReviews(f)
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[i])
}
