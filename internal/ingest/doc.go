// Package ingest converts a raw-data export, as produced by the document
// extraction pipeline, into document schemas and their properties.
//
// The export is JSON of the form {"documents": [...]}; each document carries
// its jurisdiction, provenance and a flat "extracted_data" object whose keys
// become properties. Property types are inferred from the values and units
// from the key names ("clearance_ft", "burialDepthInches").
package ingest
