package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"schemagraph/internal/model"
)

// Format is an output format for a projected graph.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
)

// Formats lists every supported output format.
var Formats = []Format{FormatMermaid, FormatDOT, FormatJSON}

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatMermaid, FormatDOT, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown diagram format %q", s)
	}
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMermaid:
		return ".mmd"
	case FormatDOT:
		return ".dot"
	default:
		return ".json"
	}
}

// Render writes g to w in the given format.
func Render(w io.Writer, g *Graph, f Format) error {
	var (
		out []byte
		err error
	)

	switch f {
	case FormatMermaid:
		out = []byte(Mermaid(g))
	case FormatDOT:
		out = []byte(DOT(g))
	case FormatJSON:
		out, err = JSON(g)
	default:
		return fmt.Errorf("unknown diagram format %q", string(f))
	}

	if err != nil {
		return err
	}

	_, err = w.Write(out)

	return err
}

var nodeFills = map[string]string{
	ClassGlobal:         "#dbeafe",
	ClassDocument:       "#fef3c7",
	ClassJurisdiction:   "#ede9fe",
	ClassLocalProperty:  "#fef9c3",
	ClassGlobalProperty: "#dcfce7",
}

var statusStrokes = map[string]string{
	string(model.MappingPending):  "#6b7280",
	string(model.MappingApproved): "#16a34a",
	string(model.MappingRejected): "#dc2626",
	string(model.MappingConflict): "#ea580c",
}

// Mermaid renders g as a Mermaid flowchart. Node ids are positional so the
// output only depends on graph order.
func Mermaid(g *Graph) string {
	var sb strings.Builder

	direction := "TD"
	if g.Mode == ViewMappings {
		direction = "LR"
	}

	sb.WriteString("flowchart " + direction + "\n")

	if g.IsEmpty() {
		sb.WriteString("    empty[\"No schemas\"]\n")
		return sb.String()
	}

	ids := make(map[string]string, len(g.Nodes))
	byClass := make(map[string][]string)

	var classOrder []string

	for i, n := range g.Nodes {
		id := fmt.Sprintf("n%d", i)
		ids[n.ID] = id

		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, mermaidEscape(n.Label))

		if _, ok := byClass[n.Class]; !ok {
			classOrder = append(classOrder, n.Class)
		}

		byClass[n.Class] = append(byClass[n.Class], id)
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Style == EdgeDashed {
			arrow = "-.->"
		}

		if e.Label != "" {
			arrow += "|" + mermaidEscape(e.Label) + "|"
		}

		fmt.Fprintf(&sb, "    %s %s %s\n", ids[e.From], arrow, ids[e.To])
	}

	sb.WriteString("\n")

	for _, class := range classOrder {
		if fill, ok := nodeFills[class]; ok {
			fmt.Fprintf(&sb, "    classDef %s fill:%s,stroke:#334155\n", class, fill)
		}
	}

	for _, class := range classOrder {
		if _, ok := nodeFills[class]; ok {
			fmt.Fprintf(&sb, "    class %s %s\n", strings.Join(byClass[class], ","), class)
		}
	}

	for i, e := range g.Edges {
		if stroke, ok := statusStrokes[e.Class]; ok {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:%s\n", i, stroke)
		}
	}

	return sb.String()
}

func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "|", "#124;")

	return strings.ReplaceAll(s, "\n", "<br/>")
}

// DOT renders g in the Graphviz DOT language.
func DOT(g *Graph) string {
	var sb strings.Builder

	rankdir := "TB"
	if g.Mode == ViewMappings {
		rankdir = "LR"
	}

	name := "schemas"
	if g.Mode.IsValid() {
		name = g.Mode.String()
	}

	fmt.Fprintf(&sb, "digraph %q {\n", name)
	fmt.Fprintf(&sb, "  rankdir=%s;\n", rankdir)
	sb.WriteString("  node [shape=box];\n\n")

	for _, n := range g.Nodes {
		fill := nodeFills[n.Class]
		if fill == "" {
			fill = "white"
		}

		fmt.Fprintf(&sb, "  \"%s\" [label=\"%s\" style=filled fillcolor=\"%s\"];\n",
			dotEscape(n.ID), dotEscape(n.Label), fill)
	}

	if len(g.Edges) > 0 {
		sb.WriteString("\n")
	}

	for _, e := range g.Edges {
		attrs := []string{"style=" + string(e.Style)}
		if e.Label != "" {
			attrs = append([]string{fmt.Sprintf("label=\"%s\"", dotEscape(e.Label))}, attrs...)
		}

		if stroke, ok := statusStrokes[e.Class]; ok {
			attrs = append(attrs, fmt.Sprintf("color=\"%s\"", stroke))
		}

		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\" [%s];\n", dotEscape(e.From), dotEscape(e.To), strings.Join(attrs, " "))
	}

	sb.WriteString("}\n")

	return sb.String()
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")

	return strings.ReplaceAll(s, "\n", "\\n")
}

// JSON renders g as indented JSON. Empty graphs keep empty node and edge
// arrays.
func JSON(g *Graph) ([]byte, error) {
	out := *g
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}

	if out.Edges == nil {
		out.Edges = []Edge{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	return append(data, '\n'), nil
}
