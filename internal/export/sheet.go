package export

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Sheet names.
const (
	SheetProperties = "properties"
	SheetMappings   = "mappings"
)

// PropertyColumns is the header of the properties sheet.
var PropertyColumns = []string{
	"Property ID", "Property Name", "Schema", "Jurisdiction", "Type", "Description",
	"Examples", "Unit", "Frequency", "Confidence", "Status", "Mapped To", "Notes", "Last Modified",
}

// MappingColumns is the header of the mappings sheet.
var MappingColumns = []string{
	"Mapping ID", "Local Property", "Global Property", "Local Schema", "Jurisdiction", "Confidence",
	"Status", "Local Examples", "Global Examples", "Transformation", "Conflict Reason",
	"Reviewer", "Review Date", "Notes",
}

// Sheet is one tabular export.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options selects what goes into an export.
type Options struct {
	IncludeProperties bool
	IncludeMappings   bool
	MinConfidence     float64
	// Statuses restricts both sheets to entities in one of these statuses.
	// Names that are not a status of the sheet's entity kind are ignored; a
	// sheet left with no status of its own kind is empty.
	Statuses []string
}

// Build returns the sheets selected by opts, properties first.
func Build(idx *index.Index, opts Options) []Sheet {
	var sheets []Sheet

	if opts.IncludeProperties {
		f := model.PropertyFilter{MinConfidence: opts.MinConfidence}
		for _, s := range opts.Statuses {
			if st := model.PropertyStatus(s); st.IsValid() {
				f.Statuses = append(f.Statuses, st)
			}
		}

		sheet := PropertiesSheet(idx, f)
		if len(opts.Statuses) > 0 && len(f.Statuses) == 0 {
			sheet.Rows = nil
		}

		sheets = append(sheets, sheet)
	}

	if opts.IncludeMappings {
		f := model.MappingFilter{MinConfidence: opts.MinConfidence}
		for _, s := range opts.Statuses {
			if st := model.MappingStatus(s); st.IsValid() {
				f.Statuses = append(f.Statuses, st)
			}
		}

		sheet := MappingsSheet(idx, f)
		if len(opts.Statuses) > 0 && len(f.Statuses) == 0 {
			sheet.Rows = nil
		}

		sheets = append(sheets, sheet)
	}

	return sheets
}

// PropertiesSheet lists the properties matching f, in collection order.
func PropertiesSheet(idx *index.Index, f model.PropertyFilter) Sheet {
	sheet := Sheet{Name: SheetProperties, Header: PropertyColumns}

	seen := make(map[string]bool)

	for _, p := range idx.Collection().FilterProperties(f) {
		if seen[p.ID] {
			continue
		}

		seen[p.ID] = true

		schemaName, jurisdiction := "", ""
		if s := idx.Schema(p.Schema); s != nil {
			schemaName, jurisdiction = displayName(s.Name, s.ID), s.JurisdictionBucket()
		}

		sheet.Rows = append(sheet.Rows, []string{
			p.ID,
			p.Name,
			schemaName,
			jurisdiction,
			p.Type,
			p.Description,
			jsonList(p.Examples),
			p.Unit,
			strconv.Itoa(p.Frequency),
			formatFloat(p.Confidence),
			string(p.Status),
			jsonList(mappedTo(idx, &p)),
			p.Notes,
			formatTime(p.LastModified),
		})
	}

	return sheet
}

// MappingsSheet lists the mappings matching f, in collection order.
func MappingsSheet(idx *index.Index, f model.MappingFilter) Sheet {
	sheet := Sheet{Name: SheetMappings, Header: MappingColumns}

	seen := make(map[string]bool)

	for _, m := range idx.Collection().FilterMappings(f) {
		if seen[m.ID] {
			continue
		}

		seen[m.ID] = true

		local, global := idx.Property(m.SourceProperty), idx.Property(m.TargetProperty)

		localSchema := m.SourceSchema
		jurisdiction := m.Jurisdiction

		if s := idx.Schema(m.SourceSchema); s != nil {
			localSchema = displayName(s.Name, s.ID)
			if jurisdiction == "" {
				jurisdiction = s.JurisdictionBucket()
			}
		}

		sheet.Rows = append(sheet.Rows, []string{
			m.ID,
			propertyName(local, m.SourceProperty),
			propertyName(global, m.TargetProperty),
			localSchema,
			jurisdiction,
			formatFloat(m.Confidence),
			string(m.Status),
			jsonList(examples(local)),
			jsonList(examples(global)),
			DescribeTransform(m.Transform),
			m.ConflictReason,
			m.Reviewer,
			formatTime(m.LastModified),
			m.Notes,
		})
	}

	return sheet
}

// DescribeTransform renders a transformation rule for a reviewer,
// e.g. "x*0.3048 feet->meters; trim, lowercase".
func DescribeTransform(r *model.TransformRule) string {
	if r.IsEmpty() {
		return ""
	}

	var parts []string

	if c := r.UnitConversion; c != nil {
		expr := "x*" + formatFloat(c.Factor)
		if c.Offset != 0 {
			expr += fmt.Sprintf("%+g", c.Offset)
		}

		if c.FromUnit != "" || c.ToUnit != "" {
			expr += " " + c.FromUnit + "->" + c.ToUnit
		}

		parts = append(parts, expr)
	}

	if len(r.Normalize) > 0 {
		names := make([]string, 0, len(r.Normalize))
		for _, n := range r.Normalize {
			names = append(names, string(n))
		}

		parts = append(parts, strings.Join(names, ", "))
	}

	return strings.Join(parts, "; ")
}

// mappedTo merges the property's declared cross-references with the
// targets of mappings sourced from it.
func mappedTo(idx *index.Index, p *model.Property) []string {
	out := slices.Clone([]string(p.MappedTo))

	for _, mid := range idx.DocumentMappings(p.Schema) {
		m := idx.Mapping(mid)
		if m.SourceProperty == p.ID && !slices.Contains(out, m.TargetProperty) {
			out = append(out, m.TargetProperty)
		}
	}

	return out
}

func examples(p *model.Property) []string {
	if p == nil {
		return nil
	}

	return p.Examples
}

func propertyName(p *model.Property, fallback string) string {
	if p == nil {
		return fallback
	}

	return displayName(p.Name, p.ID)
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}

	return name
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return strings.Join(items, "; ")
	}

	return string(data)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}
