// Package transform turns raw source rows into rows ready to append.
//
// Normalize coerces each column to its semantic type, turning values it
// cannot coerce into NULL rather than failing. FilterByKeys restricts a
// dependent table to keys known from the primary table, and Deduplicate
// keeps the first row seen for each key.
package transform
