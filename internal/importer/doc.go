// Package importer loads the movie dataset into a destination store.
//
// A Loader runs one table through read, normalize, filter, deduplicate and
// append, and reports a moviedb.TableResult instead of failing the process.
// A Pipeline resets the schema and drives the Loader over the four tables in
// fixed order: movies_metadata first, whose keys then restrict links,
// keywords and credits. After a failed table the injected moviedb.StagePolicy
// decides whether the remaining tables are still loaded.
package importer
