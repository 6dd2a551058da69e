// Package store holds the destination database implementations of
// moviedb.Store and moviedb.MovieStore:
//
//   - postgres: pgx pool, bulk append via COPY
//   - sqlite: database/sql with the pure Go modernc driver, batched INSERTs in a transaction
//
// Both create the schema from internal/schema so their tables are identical.
package store
