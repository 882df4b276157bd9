// Package config provides configuration loading for schemagraph.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"schemagraph/internal/common"
	"schemagraph/internal/diagram"
	"schemagraph/internal/export"
	"schemagraph/internal/model"
)

// Config is the complete schemagraph configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Review  ReviewConfig  `yaml:"review"`
	Diagram DiagramConfig `yaml:"diagram"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// DatasetConfig locates the entity collection.
type DatasetConfig struct {
	// Paths are doublestar patterns of dataset files to merge.
	Paths []string `yaml:"paths"`
	// Store is the file decisions are written back to. Defaults to the
	// single matched dataset when exactly one file matches.
	Store string `yaml:"store"`
}

// ReviewConfig configures the validation workflow.
type ReviewConfig struct {
	// Reviewer is recorded on every decision.
	Reviewer string `yaml:"reviewer"`
}

// DiagramConfig configures diagram output.
type DiagramConfig struct {
	View   string `yaml:"view"`
	Format string `yaml:"format"`
	// Output is a file or, with several views, a directory. Empty = stdout.
	Output string `yaml:"output"`
}

// ExportConfig configures validation-sheet export.
type ExportConfig struct {
	Dir           string   `yaml:"dir"`
	Sheets        []string `yaml:"sheets"`
	MinConfidence float64  `yaml:"min_confidence"`
	Statuses      []string `yaml:"statuses"`
	// SQLDriver and DSN, when set, send the sheets to a database instead.
	SQLDriver string `yaml:"sql_driver"`
	DSN       string `yaml:"dsn"`
}

// WatchConfig configures the dataset watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Paths: []string{"schemagraph.d/**/*.yaml"},
		},
		Diagram: DiagramConfig{
			View:   diagram.ViewHierarchy.String(),
			Format: string(diagram.FormatMermaid),
		},
		Export: ExportConfig{
			Dir:    "export",
			Sheets: []string{export.SheetProperties, export.SheetMappings},
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Dataset.Paths) == 0 {
		errs = append(errs, errors.New("dataset.paths is required"))
	}

	if _, err := diagram.ParseViewMode(c.Diagram.View); err != nil {
		errs = append(errs, fmt.Errorf("diagram.view: %w", err))
	}

	if _, err := diagram.ParseFormat(c.Diagram.Format); err != nil {
		errs = append(errs, fmt.Errorf("diagram.format: %w", err))
	}

	if !common.IsUnitInterval(c.Export.MinConfidence) {
		errs = append(errs, errors.New("export.min_confidence must be between 0 and 1"))
	}

	for _, s := range c.Export.Sheets {
		if s != export.SheetProperties && s != export.SheetMappings {
			errs = append(errs, fmt.Errorf("export.sheets: unknown sheet %q", s))
		}
	}

	for _, s := range c.Export.Statuses {
		if !model.PropertyStatus(s).IsValid() && !model.MappingStatus(s).IsValid() {
			errs = append(errs, fmt.Errorf("export.statuses: unknown status %q", s))
		}
	}

	if c.Export.SQLDriver != "" {
		if _, err := export.DialectForDriver(c.Export.SQLDriver); err != nil {
			errs = append(errs, fmt.Errorf("export.sql_driver: %w", err))
		}

		if c.Export.DSN == "" {
			errs = append(errs, errors.New("export.dsn is required with export.sql_driver"))
		}
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}

	return level, nil
}

// ExportOptions converts the export settings for the export package.
func (c *Config) ExportOptions() export.Options {
	opts := export.Options{
		MinConfidence: c.Export.MinConfidence,
		Statuses:      c.Export.Statuses,
	}

	for _, s := range c.Export.Sheets {
		switch s {
		case export.SheetProperties:
			opts.IncludeProperties = true
		case export.SheetMappings:
			opts.IncludeMappings = true
		}
	}

	return opts
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one. Non-zero values of other win.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Dataset.Paths) > 0 {
		c.Dataset.Paths = other.Dataset.Paths
	}

	if other.Dataset.Store != "" {
		c.Dataset.Store = other.Dataset.Store
	}

	if other.Review.Reviewer != "" {
		c.Review.Reviewer = other.Review.Reviewer
	}

	if other.Diagram.View != "" {
		c.Diagram.View = other.Diagram.View
	}

	if other.Diagram.Format != "" {
		c.Diagram.Format = other.Diagram.Format
	}

	if other.Diagram.Output != "" {
		c.Diagram.Output = other.Diagram.Output
	}

	if other.Export.Dir != "" {
		c.Export.Dir = other.Export.Dir
	}

	if len(other.Export.Sheets) > 0 {
		c.Export.Sheets = other.Export.Sheets
	}

	if other.Export.MinConfidence != 0 {
		c.Export.MinConfidence = other.Export.MinConfidence
	}

	if len(other.Export.Statuses) > 0 {
		c.Export.Statuses = other.Export.Statuses
	}

	if other.Export.SQLDriver != "" {
		c.Export.SQLDriver = other.Export.SQLDriver
		c.Export.DSN = other.Export.DSN
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
