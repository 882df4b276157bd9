package diagram

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Project builds the graph for one view mode. An unknown mode is a caller
// defect and yields a ClassProjection error with no graph. An empty index
// yields an empty graph.
func Project(idx *index.Index, mode ViewMode) (*Graph, error) {
	switch mode {
	case ViewHierarchy:
		return projectHierarchy(idx), nil
	case ViewMappings:
		return projectMappings(idx), nil
	case ViewJurisdictions:
		return projectJurisdictions(idx), nil
	default:
		return nil, model.NewError(model.ClassProjection, "graph", "", model.ErrUnknownViewMode, mode.String())
	}
}

// ProjectAll projects several views concurrently over one snapshot of idx.
// Graphs are returned in the order of modes; no modes means every mode.
func ProjectAll(ctx context.Context, idx *index.Index, modes ...ViewMode) ([]*Graph, error) {
	if len(modes) == 0 {
		modes = ViewModes
	}

	for _, mode := range modes {
		if !mode.IsValid() {
			return nil, model.NewError(model.ClassProjection, "graph", "", model.ErrUnknownViewMode, mode.String())
		}
	}

	snap := idx.Snapshot()
	graphs := make([]*Graph, len(modes))

	g, ctx := errgroup.WithContext(ctx)

	for i, mode := range modes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			graph, err := Project(snap, mode)
			if err != nil {
				return err
			}

			graphs[i] = graph

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return graphs, nil
}

// projectHierarchy emits global schemas then document schemas, each sorted by
// id. Global inheritance edges run parent to child; document edges run from
// the document to the global schema it maps into.
func projectHierarchy(idx *index.Index) *Graph {
	g := &Graph{Mode: ViewHierarchy}

	globals := idx.GlobalSchemaIDs()
	documents := idx.DocumentSchemaIDs()

	for _, id := range globals {
		s := idx.Schema(id)
		g.addNode(SchemaNodeID(id), globalLabel(s, idx.SourceCount(id)), ClassGlobal)
	}

	for _, id := range documents {
		g.addNode(SchemaNodeID(id), documentLabel(idx.Schema(id)), ClassDocument)
	}

	for _, id := range globals {
		for _, child := range idx.Children(id) {
			if !idx.Schema(child).IsGlobal() {
				continue
			}

			g.addEdge(Edge{From: SchemaNodeID(id), To: SchemaNodeID(child), Style: EdgeSolid, Class: ClassInheritance})
		}
	}

	for _, id := range documents {
		s := idx.Schema(id)

		parent := idx.Schema(s.Parent)
		if parent == nil || !parent.IsGlobal() {
			continue
		}

		g.addEdge(Edge{From: SchemaNodeID(id), To: SchemaNodeID(parent.ID), Style: EdgeDashed, Class: ClassOrigin})
	}

	return g
}

// projectMappings emits, in order, the source documents, their local
// properties and the global properties. Every mapping into the same global
// property converges on one node.
func projectMappings(idx *index.Index) *Graph {
	g := &Graph{Mode: ViewMappings}

	var (
		docs, locals, globals []Node
		ownership, mappings   []Edge
	)

	seenLocal := make(map[string]bool)
	seenGlobal := make(map[string]bool)

	for _, sid := range idx.SchemaIDs() {
		docEmitted := false

		for _, mid := range idx.DocumentMappings(sid) {
			m := idx.Mapping(mid)
			if !idx.IsTargetResolved(m) {
				continue
			}

			if !docEmitted {
				docs = append(docs, Node{ID: SchemaNodeID(sid), Label: documentLabel(idx.Schema(sid)), Class: ClassDocument})
				docEmitted = true
			}

			localID := PropertyNodeID(m.SourceProperty)
			if !seenLocal[m.SourceProperty] {
				seenLocal[m.SourceProperty] = true
				locals = append(locals, Node{ID: localID, Label: propertyLabel(idx.Property(m.SourceProperty)), Class: ClassLocalProperty})
				ownership = append(ownership, Edge{From: SchemaNodeID(sid), To: localID, Style: EdgeSolid, Class: ClassOwnership})
			}

			globalID := PropertyNodeID(m.TargetProperty)
			if !seenGlobal[m.TargetProperty] {
				seenGlobal[m.TargetProperty] = true
				target := idx.Property(m.TargetProperty)
				label := propertyLabel(target) + "\n" + count(len(idx.FanIn(m.TargetProperty)), "mapping")
				globals = append(globals, Node{ID: globalID, Label: label, Class: ClassGlobalProperty})
			}

			mappings = append(mappings, Edge{
				From:  localID,
				To:    globalID,
				Label: FormatPercent(m.Confidence),
				Style: mappingStyle(m.Status),
				Class: string(m.Status),
			})
		}
	}

	g.Nodes = append(append(append(g.Nodes, docs...), locals...), globals...)
	g.Edges = append(append(g.Edges, ownership...), mappings...)

	return g
}

// projectJurisdictions emits each bucket followed by its schemas.
func projectJurisdictions(idx *index.Index) *Graph {
	g := &Graph{Mode: ViewJurisdictions}

	for _, name := range idx.Jurisdictions() {
		members := idx.Bucket(name)
		bucketID := JurisdictionNodeID(name)

		g.addNode(bucketID, name+"\n"+count(len(members), "schema"), ClassJurisdiction)

		for _, sid := range members {
			s := idx.Schema(sid)

			class := ClassDocument
			if s.IsGlobal() {
				class = ClassGlobal
			}

			g.addNode(SchemaNodeID(sid), displayName(s.Name, s.ID), class)
			g.addEdge(Edge{From: bucketID, To: SchemaNodeID(sid), Style: EdgeSolid, Class: ClassMembership})
		}
	}

	return g
}

func mappingStyle(status model.MappingStatus) EdgeStyle {
	if status == model.MappingApproved {
		return EdgeSolid
	}

	return EdgeDashed
}

func globalLabel(s *model.Schema, sources int) string {
	lines := []string{displayName(s.Name, s.ID)}
	if s.Version != "" {
		lines[0] += " v" + s.Version
	}

	lines = append(lines,
		count(len(s.Properties), "property"),
		count(sources, "source"))

	return strings.Join(lines, "\n")
}

func documentLabel(s *model.Schema) string {
	return fmt.Sprintf("%s\n%s\n%s",
		displayName(s.Name, s.ID), s.JurisdictionBucket(), count(len(s.Properties), "property"))
}

func propertyLabel(p *model.Property) string {
	label := displayName(p.Name, p.ID)
	if p.Unit != "" {
		label += " (" + p.Unit + ")"
	}

	return label
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}

	return name
}
