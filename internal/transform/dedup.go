package transform

import "github.com/vvka-141/moviedb/pkg/moviedb"

// DedupStats reports what Deduplicate discarded.
type DedupStats struct {
	Duplicates int
	NullKeys   int
}

// Deduplicate drops rows with a NULL key and all but the first row for each key.
// Input order is preserved. The discard counts are handed to observe, which
// may be nil.
func Deduplicate(rows []moviedb.Row, key string, observe func(DedupStats)) []moviedb.Row {
	var stats DedupStats
	seen := make(map[any]struct{}, len(rows))
	kept := make([]moviedb.Row, 0, len(rows))

	for _, row := range rows {
		k := row[key]
		if k == nil {
			stats.NullKeys++
			continue
		}
		if _, dup := seen[k]; dup {
			stats.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}

	if observe != nil {
		observe(stats)
	}
	return kept
}
