// Package dataset reads and writes entity collections on disk.
//
// A dataset file holds schemas, properties and mappings in one of three
// encodings, chosen by file extension:
//
//   - .yaml / .yml: the hand-editable form
//   - .json: the form produced by other tooling
//   - .msgpack: a compact binary snapshot
//
// Example YAML:
//
//	version: "1"
//	schemas:
//	  - id: global_clearances
//	    name: Utility Clearances
//	    kind: global
//	    properties: [vertical_clearance]
//	properties:
//	  - id: vertical_clearance
//	    schema: global_clearances
//	    name: vertical_clearance
//	    unit: meters
//	    confidence: 1
//	mappings: []
//
// Store is the file-backed persistence collaborator the CLI hands workflow
// mutations to.
package dataset
