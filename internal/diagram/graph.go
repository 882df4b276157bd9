package diagram

import (
	"fmt"
	"math"

	"github.com/go-openapi/inflect"
)

// Node style classes consumed by the presentation layer.
const (
	ClassGlobal         = "global"
	ClassDocument       = "document"
	ClassJurisdiction   = "jurisdiction"
	ClassLocalProperty  = "local_property"
	ClassGlobalProperty = "global_property"
	ClassOwnership      = "ownership"
	ClassInheritance    = "inheritance"
	ClassOrigin         = "origin"
	ClassMembership     = "membership"
)

// EdgeStyle is the stroke of an edge.
type EdgeStyle string

const (
	EdgeSolid  EdgeStyle = "solid"
	EdgeDashed EdgeStyle = "dashed"
)

// Node is a labelled vertex. Label lines are separated by "\n".
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Class string `json:"class"`
}

// Edge is a directed, optionally labelled connection between two nodes.
type Edge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label,omitempty"`
	Style EdgeStyle `json:"style"`
	Class string    `json:"class,omitempty"`
}

// Graph is the description handed to a renderer.
type Graph struct {
	Mode  ViewMode `json:"mode"`
	Nodes []Node   `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}

	return nil
}

// EdgesTo returns the edges whose target is id, in graph order.
func (g *Graph) EdgesTo(id string) []Edge {
	var out []Edge

	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}

	return out
}

func (g *Graph) addNode(id, label, class string) {
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Class: class})
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// SchemaNodeID returns the node id used for a schema.
func SchemaNodeID(id string) string { return "schema:" + id }

// PropertyNodeID returns the node id used for a property.
func PropertyNodeID(id string) string { return "property:" + id }

// JurisdictionNodeID returns the node id used for a jurisdiction bucket.
func JurisdictionNodeID(name string) string { return "jurisdiction:" + name }

// FormatPercent formats a confidence in [0,1] as an integer percentage,
// rounding half up. The epsilon absorbs binary representation error, so
// 0.955 renders as "96%".
func FormatPercent(confidence float64) string {
	pct := math.Floor(confidence*100 + 0.5 + 1e-9)

	return fmt.Sprintf("%d%%", int(pct))
}

// count formats n followed by noun, pluralized unless n is 1.
func count(n int, noun string) string {
	if n != 1 {
		noun = inflect.Pluralize(noun)
	}

	return fmt.Sprintf("%d %s", n, noun)
}
