// Package export builds the reviewer validation sheets (properties and
// mappings) from filtered entity queries and writes them as CSV files or
// into a SQL database.
package export
