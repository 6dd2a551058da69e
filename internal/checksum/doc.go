// Package checksum computes SHA-256 digests of source files and of the
// normalized rows appended to the destination.
//
// Two runs over unchanged source files produce identical digests, which
// makes a rerun verifiable without comparing the tables themselves:
//
//	calculator := checksum.New()
//	sourceDigest, err := calculator.File(path)
//	rowsDigest := calculator.Rows(table, rows)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
