package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemagraph/internal/dataset"
	"schemagraph/internal/model"
	"schemagraph/internal/workflow"
)

const reviewDataset = `
schemas:
  - id: G
    name: Utility Clearances
    version: 2.1.0
    kind: global
    properties: [g_vert, g_depth]
  - id: NYC
    name: NYC Utility Standards
    kind: document
    jurisdiction: New York City
    parent: G
    properties: [nyc_vert, nyc_depth]
properties:
  - {id: g_vert, schema: G, name: vertical_clearance, type: measurement, unit: meters, confidence: 1, frequency: 1}
  - {id: g_depth, schema: G, name: burial_depth, type: measurement, unit: meters, confidence: 1, frequency: 1}
  - {id: nyc_vert, schema: NYC, name: Min Vertical Clearance, type: measurement, unit: feet, examples: 20 feet, confidence: 0.92, frequency: 1}
  - {id: nyc_depth, schema: NYC, name: burial depth, type: measurement, unit: inches, examples: 36 in, confidence: 0.6, frequency: 1}
mappings:
  - id: m1
    source_schema: NYC
    source_property: nyc_vert
    target_property: g_vert
    confidence: 0.92
    transform:
      unit_conversion: {factor: 0.3048, from_unit: feet, to_unit: meters}
  - id: m2
    source_schema: NYC
    source_property: nyc_depth
    target_property: g_depth
    confidence: 0.6
    status: conflict
    conflict_reason: inches vs centimeters in source table
`

type fixture struct {
	dir     string
	dataset string
	config  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		dataset: filepath.Join(dir, "data", "review.yaml"),
		config:  filepath.Join(dir, "schemagraph.yaml"),
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(f.dataset), 0o755))
	require.NoError(t, os.WriteFile(f.dataset, []byte(reviewDataset), 0o644))

	cfg := "dataset:\n  paths: [" + filepath.Join(dir, "data", "*.yaml") + "]\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o644))

	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", f.config}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := newFixture(t).run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schemagraph version "+Version)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "0 errors, 0 warnings")

	broken := reviewDataset + `  - {id: m3, source_schema: NYC, source_property: nyc_vert, target_property: g_vert, confidence: 2}
`
	require.NoError(t, os.WriteFile(f.dataset, []byte(broken), 0o644))

	out, err = f.run(t, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "m3")
	assert.Contains(t, out, "1 errors")
}

func TestDiagram(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "diagram", "--view", "mappings")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart")
	assert.Contains(t, out, "92%")

	outDir := filepath.Join(f.dir, "diagrams")
	out, err = f.run(t, "diagram", "--all", "--format", "dot", "-o", outDir)
	require.NoError(t, err)

	for _, name := range []string{"hierarchy.dot", "mappings.dot", "jurisdictions.dot"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, out)
		assert.Contains(t, string(data), "digraph")
	}

	_, err = f.run(t, "diagram", "--view", "radial")
	assert.Error(t, err)
}

func TestDecideMapping(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "--reviewer", "alice", "decide", "mapping", "m2", "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "mapping m2 is now approved")

	saved, err := dataset.LoadFile(f.dataset)
	require.NoError(t, err)

	m := saved.Mappings[1]
	assert.Equal(t, model.MappingApproved, m.Status)
	assert.Equal(t, "alice", m.Reviewer)
	assert.False(t, m.LastModified.IsZero())
	assert.Equal(t, "inches vs centimeters in source table", m.ConflictReason)

	_, err = f.run(t, "--reviewer", "alice", "decide", "mapping", "m2", "reject")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestDecide_SkipsInvalidEntities(t *testing.T) {
	f := newFixture(t)

	broken := strings.Replace(reviewDataset, "    conflict_reason: inches vs centimeters in source table\n", "", 1)
	require.NotEqual(t, reviewDataset, broken)
	require.NoError(t, os.WriteFile(f.dataset, []byte(broken), 0o644))

	out, err := f.run(t, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "missing_conflict_reason")

	_, err = f.run(t, "--reviewer", "alice", "decide", "mapping", "m2", "reject")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingConflictReason)

	saved, err := dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	assert.Equal(t, model.MappingConflict, saved.Mappings[1].Status)
	assert.Empty(t, saved.Mappings[1].Reviewer)

	out, err = f.run(t, "--reviewer", "alice", "decide", "mapping", "m1", "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "mapping m1 is now approved")
	assert.Contains(t, out, "conflicts 0")

	saved, err = dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	require.Len(t, saved.Mappings, 2)
	assert.Equal(t, model.MappingApproved, saved.Mappings[0].Status)
	assert.Equal(t, "m2", saved.Mappings[1].ID)
	assert.Equal(t, model.MappingConflict, saved.Mappings[1].Status)
	assert.Empty(t, saved.Mappings[1].Reviewer)
}

func TestDecideImport(t *testing.T) {
	f := newFixture(t)
	sheet := filepath.Join(f.dir, "reviewed.csv")

	require.NoError(t, os.WriteFile(sheet, []byte("Mapping ID,Status,Reviewer\n"+
		"m1,Approved,\n"+
		"m2,rejected,carol\n"+
		"m9,approved,\n"), 0o644))

	out, err := f.run(t, "--reviewer", "alice", "decide", "import", sheet)
	require.NoError(t, err)
	assert.Contains(t, out, "failed  m9")
	assert.Contains(t, out, "2 updated, 0 unchanged, 1 failed")

	saved, err := dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	assert.Equal(t, model.MappingApproved, saved.Mappings[0].Status)
	assert.Equal(t, "alice", saved.Mappings[0].Reviewer)
	assert.Equal(t, model.MappingRejected, saved.Mappings[1].Status)
	assert.Equal(t, "carol", saved.Mappings[1].Reviewer)

	out, err = f.run(t, "--reviewer", "alice", "decide", "import", sheet)
	require.NoError(t, err)
	assert.Contains(t, out, "0 updated, 2 unchanged, 1 failed")

	require.NoError(t, os.WriteFile(sheet, []byte("Name,Status\nx,approved\n"), 0o644))
	_, err = f.run(t, "--reviewer", "alice", "decide", "import", sheet)
	assert.Error(t, err)
}

func TestDecide_RequiresReviewer(t *testing.T) {
	_, err := newFixture(t).run(t, "decide", "mapping", "m1", "approve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviewer")
}

func TestDecideProperty_DidYouMean(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "--reviewer", "alice", "decide", "property", "nyc_vrt", "approve")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), "nyc_vert")
}

func TestDecideBulk(t *testing.T) {
	f := newFixture(t)
	metrics := filepath.Join(f.dir, "workflow.prom")

	out, err := f.run(t, "--reviewer", "bob", "decide", "--metrics-textfile", metrics, "bulk", "mapping", "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "1 updated, 0 failed")

	saved, err := dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	assert.Equal(t, model.MappingApproved, saved.Mappings[0].Status)
	assert.Equal(t, model.MappingConflict, saved.Mappings[1].Status)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `schemagraph_workflow_decisions_total{decision="approve",kind="mapping",outcome="applied"} 1`)

	out, err = f.run(t, "--reviewer", "bob", "decide", "bulk", "mapping", "reject", "m1", "m2", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "1 updated, 2 failed")
}

func TestExport_CSV(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.dir, "sheets")

	out, err := f.run(t, "export", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "properties.csv (4 rows)")
	assert.Contains(t, out, "mappings.csv (2 rows)")

	out, err = f.run(t, "export", "--dir", dir, "--status", "conflict")
	require.NoError(t, err)
	assert.Contains(t, out, "mappings.csv (1 rows)")
}

func TestExport_SQLite(t *testing.T) {
	f := newFixture(t)
	dbPath := filepath.Join(f.dir, "review.db")

	_, err := f.run(t, "export", "--sql-driver", "sqlite", "--dsn", dbPath)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "schemagraph_mappings"`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSummary(t *testing.T) {
	out, err := newFixture(t).run(t, "summary", "--format", "json")
	require.NoError(t, err)

	var s workflow.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 2, s.Schemas)
	assert.Equal(t, 1, s.Totals.Conflicts())
	assert.Contains(t, s.Jurisdictions, "New York City")
}

func TestResolve(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "resolve", "NYC", "--format", "json")
	require.NoError(t, err)

	var values []struct {
		GlobalProperty string `json:"global_property"`
		Value          string `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	require.NotEmpty(t, values)
	assert.Equal(t, "g_vert", values[len(values)-1].GlobalProperty)
	assert.Equal(t, "6.096 meters", values[len(values)-1].Value)

	out, err = f.run(t, "resolve", "NYC", "--value", "nyc_vert=10 ft")
	require.NoError(t, err)
	assert.Contains(t, out, "3.048 meters")
}

func TestSuggest(t *testing.T) {
	out, err := newFixture(t).run(t, "suggest", "nyc_depth", "--min-score", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "g_vert")
	assert.NotContains(t, out, "g_depth", "already mapped targets are skipped")
}

func TestIngest(t *testing.T) {
	f := newFixture(t)

	raw := filepath.Join(f.dir, "export.json")
	require.NoError(t, os.WriteFile(raw, []byte(`{"documents":[{
		"jurisdiction_name": "Los Angeles",
		"jurisdiction_level": "city",
		"title": "LA Street Standards",
		"content_hash": "abc123",
		"confidence_score": 0.8,
		"extracted_data": {"min_clearance_ft": 16, "material": "HDPE"}
	}]}`), 0o644))

	out, err := f.run(t, "ingest", raw, "--parent", "G")
	require.NoError(t, err)
	assert.Contains(t, out, "ingested 1 documents: 1 schemas, 2 properties")

	saved, err := dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	require.Len(t, saved.Schemas, 3)
	assert.Equal(t, "G", saved.Schemas[2].Parent)
	assert.Equal(t, "Los Angeles", saved.Schemas[2].Jurisdiction)

	_, err = f.run(t, "ingest", raw)
	require.NoError(t, err, "already ingested documents are skipped")

	saved, err = dataset.LoadFile(f.dataset)
	require.NoError(t, err)
	assert.Len(t, saved.Schemas, 3)
}
