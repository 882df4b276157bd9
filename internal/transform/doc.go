// Package transform applies mapping transformation rules to local values
// and resolves the values of a document schema into global properties.
package transform
