package dataset

import (
	"fmt"
	"log/slog"

	"schemagraph/internal/model"
)

// Store persists one collection in one dataset file.
type Store struct {
	path   string
	format Format
	logger *slog.Logger
}

// NewStore returns a store over path. The encoding follows the extension.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{path: path, format: format, logger: logger}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Format returns the encoding of the backing file.
func (s *Store) Format() Format {
	return s.format
}

// Load reads the backing file.
func (s *Store) Load() (*model.Collection, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}

	c := f.Collection()
	s.logger.Debug("Dataset loaded", "path", s.path,
		"schemas", len(c.Schemas), "properties", len(c.Properties), "mappings", len(c.Mappings))

	return c, nil
}

// Save replaces the backing file with c.
func (s *Store) Save(c *model.Collection) error {
	if c == nil {
		return fmt.Errorf("refusing to save a nil collection to %s", s.path)
	}

	if err := WriteFile(FromCollection(c), s.path); err != nil {
		return err
	}

	s.logger.Info("Dataset saved", "path", s.path, "entities", c.Len())

	return nil
}
