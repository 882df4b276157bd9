// Package diagram projects a relationship index into a node-and-edge graph
// for one of three views:
//
//   - hierarchy: schemas with global inheritance (solid) and
//     document-to-global origin links (dashed)
//   - mappings: documents, their local properties and the global properties
//     they map into, with one converging node per global property
//   - jurisdictions: jurisdiction buckets and the schemas in each
//
// Projection is a pure function of the index and the view mode. Output
// ordering is stable, so two projections of the same input are identical.
// Renderers turn a Graph into Mermaid, Graphviz DOT or JSON.
package diagram
