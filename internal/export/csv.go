package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCSV writes the sheet header and rows to w.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.Name, err)
	}

	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", s.Name, err)
	}

	return nil
}

// WriteDir writes each sheet to dir/<name>.csv and returns the paths.
func WriteDir(dir string, sheets []Sheet) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, len(sheets))

	for _, s := range sheets {
		path := filepath.Join(dir, s.Name+".csv")

		if err := writeFile(path, s); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func writeFile(path string, s Sheet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return WriteCSV(f, s)
}
