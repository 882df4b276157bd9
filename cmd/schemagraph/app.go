package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"schemagraph/internal/dataset"
	"schemagraph/internal/diagnostic"
	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// loadIndex loads every configured dataset, drops the entities that fail
// validation and indexes the rest. Validation errors and index warnings are
// returned together.
func (a *app) loadIndex() (*index.Index, *diagnostic.Diagnostics, error) {
	c, paths, err := dataset.LoadGlob(a.cfg.Dataset.Paths...)
	if err != nil {
		return nil, nil, err
	}

	accepted, diags := model.ValidateCollection(c)
	idx := index.Build(accepted)
	diags.Merge(*idx.Warnings())

	a.logger.Info("Index built",
		"files", len(paths),
		"schemas", len(idx.SchemaIDs()),
		"properties", len(accepted.Properties),
		"mappings", len(accepted.Mappings),
		"rejected", len(diags.Errors),
		"warnings", len(diags.Warnings))

	return idx, diags, nil
}

// openStore returns the store decisions are written to: the configured
// store, or the dataset when exactly one file matches.
func (a *app) openStore() (*dataset.Store, error) {
	path := a.cfg.Dataset.Store
	if path == "" {
		paths, err := dataset.Expand(a.cfg.Dataset.Paths...)
		if err != nil {
			return nil, err
		}

		if len(paths) != 1 {
			return nil, fmt.Errorf("%d dataset files match; choose one with --store", len(paths))
		}

		path = paths[0]
	}

	return dataset.NewStore(path, a.logger)
}

// storeState is a store's full collection alongside the index over its
// valid entities. Decisions patch the index; save writes them back over
// the full collection so invalid entities survive a save.
type storeState struct {
	store   *dataset.Store
	full    *model.Collection
	idx     *index.Index
	invalid *diagnostic.Diagnostics
}

// loadStoreIndex loads the store and indexes the entities that pass
// validation.
func (a *app) loadStoreIndex(store *dataset.Store) (*storeState, error) {
	c, err := store.Load()
	if err != nil {
		return nil, err
	}

	accepted, diags := model.ValidateCollection(c)
	if diags.HasErrors() {
		a.logger.Warn("Dataset has invalid entities", "path", store.Path(), "errors", len(diags.Errors))
	}

	return &storeState{store: store, full: c, idx: index.Build(accepted), invalid: diags}, nil
}

func (s *storeState) save() error {
	if err := model.MergeAccepted(s.full, s.idx.Collection()); err != nil {
		return err
	}

	return s.store.Save(s.full)
}

// explain replaces a not-found decision error with the validation error of
// the entity, when the entity exists but was left out of the index.
func (s *storeState) explain(err error) error {
	var me *model.Error
	if !errors.As(err, &me) || !errors.Is(me.Err, model.ErrNotFound) {
		return err
	}

	for _, d := range s.invalid.Errors {
		if d.Entity == me.Entity && d.EntityID == me.EntityID && d.Err != nil {
			return fmt.Errorf("%s %q failed validation and cannot be decided: %w", d.Entity, d.EntityID, d.Err)
		}
	}

	return err
}

func printDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	for _, group := range [][]diagnostic.Diagnostic{diags.Errors, diags.Warnings, diags.Infos} {
		for _, d := range group {
			fmt.Fprintf(w, "%-7s %s\n", d.Severity, d)
		}
	}
}

// writeStructured prints v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// createOutput opens path for writing, creating parent directories.
func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return f, nil
}
