// Package source reads the dataset's CSV files, plain or ZIP-compressed.
//
// Compressed sources are extracted to a temporary file which is removed
// before Read returns, whether or not parsing succeeded.
package source
