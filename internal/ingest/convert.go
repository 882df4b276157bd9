package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"schemagraph/internal/common"
	"schemagraph/internal/diagnostic"
	"schemagraph/internal/match"
	"schemagraph/internal/model"
)

// Diagnostic codes reported by Convert.
const (
	CodeEmptyDocument       = "empty_document"
	CodeMissingJurisdiction = "missing_jurisdiction"
	CodeBadExtractionDate   = "bad_extraction_date"
	CodeScoreClamped        = "score_clamped"
	CodeDuplicateDocument   = "duplicate_document"
	CodeUnknownParent       = "unknown_parent"
)

// namespace scopes the name-based UUIDs of ingested documents.
var namespace = uuid.MustParse("6f1c6d1e-8d2b-4a53-9b8e-2f7b3c4d5e60")

// Options configures Convert.
type Options struct {
	// Parent, when set, is the global schema every document schema is
	// attached to. It must exist in Known.
	Parent string
	// Known is the collection the documents are ingested into. Used to
	// check Parent and skip documents that are already present.
	Known *model.Collection
	// Clock stamps CreatedAt. Defaults to time.Now.
	Clock func() time.Time
}

// Convert turns raw documents into document schemas with one property per
// extracted key. Document ids derive from the content hash (or URL, or
// title) so re-ingesting an export yields the same ids; documents with no
// identifying data get a random id.
func Convert(docs []RawDocument, opts Options) (*model.Collection, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	out := &model.Collection{}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	known := map[string]*model.Schema{}
	if opts.Known != nil {
		known = opts.Known.SchemaMap()
	}

	parent := opts.Parent
	if parent != "" {
		if s, ok := known[parent]; !ok || !s.IsGlobal() {
			diags.AddError(CodeUnknownParent, fmt.Sprintf("parent %q is not a known global schema", parent), "schema", parent)
			return out, diags
		}
	}

	seen := make(map[string]bool)
	now := clock().UTC()

	for i := range docs {
		doc := &docs[i]
		id := DocumentID(doc)

		if seen[id] || known[id] != nil {
			diags.AddWarning(CodeDuplicateDocument, "document already ingested, skipped", "schema", id)
			continue
		}

		seen[id] = true

		schema, props := convertDocument(id, doc, parent, now, diags)
		out.Schemas = append(out.Schemas, schema)
		out.Properties = append(out.Properties, props...)
	}

	return out, diags
}

// DocumentID returns the schema id a raw document is ingested under.
func DocumentID(doc *RawDocument) string {
	var u uuid.UUID

	switch {
	case doc.ContentHash != "":
		u = uuid.NewSHA1(namespace, []byte("hash:"+doc.ContentHash))
	case doc.URL != "":
		u = uuid.NewSHA1(namespace, []byte("url:"+doc.URL))
	case doc.Title != "":
		u = uuid.NewSHA1(namespace, []byte("title:"+doc.JurisdictionName+"/"+doc.Title))
	default:
		u = uuid.New()
	}

	return "doc_" + strings.ReplaceAll(u.String(), "-", "")[:8]
}

func convertDocument(
	id string,
	doc *RawDocument,
	parent string,
	now time.Time,
	diags *diagnostic.Diagnostics,
) (model.Schema, []model.Property) {
	schema := model.Schema{
		ID:             id,
		Name:           documentName(doc),
		Version:        "1.0.0",
		Kind:           model.KindDocument,
		Jurisdiction:   strings.TrimSpace(doc.JurisdictionName),
		Parent:         parent,
		DocumentTitle:  doc.Title,
		DocumentSource: doc.URL,
		CreatedAt:      now,
	}

	if schema.Jurisdiction == "" {
		diags.AddWarning(CodeMissingJurisdiction, "no jurisdiction name, grouped under Global", "schema", id)
	}

	if doc.ExtractionDate != "" {
		t, err := parseExtractionDate(doc.ExtractionDate)
		if err != nil {
			diags.AddWarning(CodeBadExtractionDate, err.Error(), "schema", id)
		} else {
			schema.ExtractedAt = t
		}
	}

	confidence := doc.ConfidenceScore
	if confidence < 0 || confidence > 1 {
		diags.AddWarning(CodeScoreClamped, fmt.Sprintf("confidence score %v clamped to [0,1]", confidence), "schema", id)
		confidence = min(max(confidence, 0), 1)
	}

	keys := common.SortedKeys(doc.ExtractedData)
	if len(keys) == 0 {
		diags.AddWarning(CodeEmptyDocument, "no extracted data", "schema", id)
	}

	source := doc.URL
	if source == "" {
		source = doc.Title
	}

	props := make([]model.Property, 0, len(keys))
	used := make(map[string]int, len(keys))

	for _, key := range keys {
		inf := inferProperty(key, doc.ExtractedData[key])

		pid := propertyID(id, key, used)
		schema.Properties = append(schema.Properties, pid)

		p := model.Property{
			ID:         pid,
			Schema:     id,
			Name:       key,
			Type:       inf.Type,
			Unit:       inf.Unit,
			Examples:   inf.Examples,
			Frequency:  1,
			Confidence: confidence,
			Status:     model.PropertyPending,
		}

		if source != "" {
			p.Sources = model.StringOrArray{source}
		}

		props = append(props, p)
	}

	return schema, props
}

// propertyID derives a readable id from the key, suffixed on collision.
func propertyID(schemaID, key string, used map[string]int) string {
	base := strings.Join(match.Tokenize(key), "_")
	if base == "" {
		base = "property"
	}

	used[base]++
	if n := used[base]; n > 1 {
		base = fmt.Sprintf("%s_%d", base, n)
	}

	return schemaID + "." + base
}

func documentName(doc *RawDocument) string {
	if t := strings.TrimSpace(doc.Title); t != "" {
		return t
	}

	parts := []string{strings.TrimSpace(doc.JurisdictionName)}
	if doc.JurisdictionLevel != "" {
		parts = append(parts, "("+cases.Title(language.English).String(doc.JurisdictionLevel)+")")
	}

	parts = append(parts, "document")

	return strings.TrimSpace(strings.Join(parts, " "))
}
