package moviedb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the destination database handle. It is passed explicitly to
// every loader call; nothing in the import path reaches for a global connection.
type Store interface {
	// Reset drops and recreates every given table, leaving them empty.
	Reset(ctx context.Context, tables []*Table) error

	// Append bulk-inserts rows into an existing table and reports how many were written.
	// Row values must already be normalized to the column types.
	Append(ctx context.Context, table *Table, rows []Row) (int64, error)

	// Close releases the underlying connection.
	Close()
}

// MovieStore is the slice of the destination used by poster enrichment.
type MovieStore interface {
	// ListMovies returns every movie with the fields needed to search for a poster.
	ListMovies(ctx context.Context) ([]Movie, error)

	// UpdatePoster sets poster_path for a single movie.
	UpdatePoster(ctx context.Context, id int64, posterPath string) error
}

// Connector establishes a Postgres connection pool.
// Implementations handle standard credentials and cloud IAM tokens.
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
