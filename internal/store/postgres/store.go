// Package postgres implements the destination store on PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/moviedb/internal/schema"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Store is a Postgres-backed moviedb.Store and moviedb.MovieStore.
type Store struct {
	pool    *pgxpool.Pool
	release []func() error
}

var (
	_ moviedb.Store      = (*Store)(nil)
	_ moviedb.MovieStore = (*Store)(nil)
)

// New wraps an open pool. Close closes the pool, then runs release in order,
// for resources such as a Cloud SQL dialer that must outlive the pool.
func New(pool *pgxpool.Pool, release ...func() error) *Store {
	if pool == nil {
		panic("pool cannot be nil")
	}
	return &Store{pool: pool, release: release}
}

// Reset drops and recreates every table in one transaction.
func (s *Store) Reset(ctx context.Context, tables []*moviedb.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", moviedb.ErrResetFailed, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range schema.Postgres.ResetStatements(tables) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %s: %w", moviedb.ErrResetFailed, firstLine(stmt), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", moviedb.ErrResetFailed, err)
	}
	return nil
}

// Append streams rows into the table with COPY.
func (s *Store) Append(ctx context.Context, table *moviedb.Table, rows []moviedb.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = row.Values(table)
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{table.Name}, table.ColumnNames(), pgx.CopyFromRows(values))
	if err != nil {
		return n, fmt.Errorf("%w: copy into %s: %w", moviedb.ErrWriteFailure, table.Name, err)
	}
	return n, nil
}

const listMoviesSQL = `
SELECT id,
       COALESCE(title, ''),
       COALESCE(original_title, ''),
       COALESCE(to_char(release_date, 'YYYY-MM-DD'), ''),
       COALESCE(poster_path, '')
FROM movies_metadata
ORDER BY id`

// ListMovies returns every movie ordered by id.
func (s *Store) ListMovies(ctx context.Context) ([]moviedb.Movie, error) {
	rows, err := s.pool.Query(ctx, listMoviesSQL)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	movies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (moviedb.Movie, error) {
		var m moviedb.Movie
		err := row.Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.ReleaseDate, &m.PosterPath)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// UpdatePoster sets poster_path for one movie.
func (s *Store) UpdatePoster(ctx context.Context, id int64, posterPath string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE movies_metadata SET poster_path = $1 WHERE id = $2`, posterPath, id)
	if err != nil {
		return fmt.Errorf("%w: update poster of movie %d: %w", moviedb.ErrWriteFailure, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movie %d not found", moviedb.ErrWriteFailure, id)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
	for _, fn := range s.release {
		_ = fn()
	}
	s.release = nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
