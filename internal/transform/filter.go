package transform

import "github.com/vvka-141/moviedb/pkg/moviedb"

// KeySet collects the integer keys of rows.
func KeySet(rows []moviedb.Row, key string) map[int64]struct{} {
	keys := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if id, ok := row[key].(int64); ok {
			keys[id] = struct{}{}
		}
	}
	return keys
}

// FilterByKeys keeps rows whose key is in keys, preserving order.
// An empty or nil key set disables filtering and returns rows unchanged.
func FilterByKeys(rows []moviedb.Row, key string, keys map[int64]struct{}) []moviedb.Row {
	if len(keys) == 0 {
		return rows
	}

	kept := make([]moviedb.Row, 0, len(rows))
	for _, row := range rows {
		id, ok := row[key].(int64)
		if !ok {
			continue
		}
		if _, known := keys[id]; known {
			kept = append(kept, row)
		}
	}
	return kept
}
