package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"schemagraph/internal/model"
)

// CurrentVersion is the dataset file version written by Marshal.
const CurrentVersion = "1"

// DefaultSchemaVersion is assigned to schemas that do not declare one.
const DefaultSchemaVersion = "1.0.0"

// File is the on-disk shape of a dataset.
type File struct {
	Version    string           `yaml:"version" json:"version"`
	Schemas    []model.Schema   `yaml:"schemas" json:"schemas"`
	Properties []model.Property `yaml:"properties" json:"properties"`
	Mappings   []model.Mapping  `yaml:"mappings" json:"mappings"`
}

// FromCollection wraps a collection for writing.
func FromCollection(c *model.Collection) *File {
	return &File{
		Version:    CurrentVersion,
		Schemas:    c.Schemas,
		Properties: c.Properties,
		Mappings:   c.Mappings,
	}
}

// Collection returns the entities of the file.
func (f *File) Collection() *model.Collection {
	return &model.Collection{
		Schemas:    f.Schemas,
		Properties: f.Properties,
		Mappings:   f.Mappings,
	}
}

// LoadFile loads and parses a dataset file from the given path.
func LoadFile(path string) (*File, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}

	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse decodes data into a File and applies defaults.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	if err := decode(data, format, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", format, err)
	}

	applyDefaults(&f)

	return &f, nil
}

// Expand returns the files matching the patterns, in pattern order then
// lexical path order, without duplicates.
func Expand(patterns ...string) ([]string, error) {
	var (
		paths []string
		seen  = make(map[string]bool)
	)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad dataset pattern %q: %w", pattern, err)
		}

		slices.Sort(matches)

		for _, m := range matches {
			clean := filepath.Clean(m)
			if !seen[clean] {
				seen[clean] = true
				paths = append(paths, clean)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files match %v", patterns)
	}

	return paths, nil
}

// LoadGlob loads every dataset matching the patterns and merges them into
// one collection. It returns the loaded paths as well.
func LoadGlob(patterns ...string) (*model.Collection, []string, error) {
	paths, err := Expand(patterns...)
	if err != nil {
		return nil, nil, err
	}

	merged := &model.Collection{}

	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, nil, err
		}

		merged.Merge(f.Collection())
	}

	return merged, paths, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	jurisdictions := make(map[string]string, len(f.Schemas))

	for i := range f.Schemas {
		s := &f.Schemas[i]
		if s.Version == "" {
			s.Version = DefaultSchemaVersion
		}

		jurisdictions[s.ID] = s.Jurisdiction
	}

	for i := range f.Properties {
		if f.Properties[i].Status == "" {
			f.Properties[i].Status = model.PropertyPending
		}
	}

	for i := range f.Mappings {
		m := &f.Mappings[i]
		if m.Status == "" {
			m.Status = model.MappingPending
		}

		if m.Jurisdiction == "" {
			m.Jurisdiction = jurisdictions[m.SourceSchema]
		}

		if m.Transform != nil && m.Transform.UnitConversion != nil && m.Transform.UnitConversion.Factor == 0 {
			m.Transform.UnitConversion.Factor = 1
		}
	}
}

// Marshal serializes a File in the given format.
func Marshal(f *File, format Format) ([]byte, error) {
	return encode(f, format)
}

// WriteFile writes a File to the given path, encoded by its extension.
// The file is replaced through a rename so readers never see a partial write.
func WriteFile(f *File, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := Marshal(f, format)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset file %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace dataset file %s: %w", path, err)
	}

	return nil
}
