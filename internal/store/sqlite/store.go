// Package sqlite implements the destination store on SQLite using
// database/sql and the pure Go modernc.org/sqlite driver. SQLite has no bulk
// load API like COPY, so Append runs a prepared INSERT per row inside one
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vvka-141/moviedb/internal/retry"
	"github.com/vvka-141/moviedb/internal/schema"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// dateLayout is how DATE columns are stored; it sorts and compares like the value.
const dateLayout = "2006-01-02"

// Store is a SQLite-backed moviedb.Store and moviedb.MovieStore.
type Store struct {
	db    *sql.DB
	retry *retry.Executor
}

var (
	_ moviedb.Store      = (*Store)(nil)
	_ moviedb.MovieStore = (*Store)(nil)
)

// Open opens (creating if needed) the SQLite database at dsn, e.g.
//
//	"moviedb.sqlite"
//	"file:moviedb.sqlite?_pragma=busy_timeout(5000)"
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty: %w", moviedb.ErrInvalidConfig)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite open: %w", moviedb.ErrConnectionFailed, err)
	}
	// One writer; a second connection would only contend for the file lock.
	db.SetMaxOpenConns(1)

	s := &Store{
		db: db,
		retry: retry.NewExecutor(retry.NewSQLiteErrorClassifier(),
			retry.NewExponentialBackoff(moviedb.DefaultRetryMaxAttempts)),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.retry.Execute(pingCtx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite ping: %w", moviedb.ErrConnectionFailed, err)
	}

	return s, nil
}

// Reset drops and recreates every table in one transaction.
func (s *Store) Reset(ctx context.Context, tables []*moviedb.Table) error {
	err := s.retry.Execute(ctx, func(ctx context.Context) error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range schema.SQLite.ResetStatements(tables) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", moviedb.ErrResetFailed, err)
	}
	return nil
}

// Append inserts rows with a prepared statement inside one transaction.
// Either every row is written or none.
func (s *Store) Append(ctx context.Context, table *moviedb.Table, rows []moviedb.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	names := table.ColumnNames()
	quoted := make([]string, len(names))
	placeholders := make([]string, len(names))
	for i, name := range names {
		quoted[i] = schema.QuoteIdent(name)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.QuoteIdent(table.Name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	var inserted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, stmtSQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, bindValues(row.Values(table))...); err != nil {
				return fmt.Errorf("insert row %d: %w", inserted+1, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: insert into %s: %w", moviedb.ErrWriteFailure, table.Name, err)
	}
	return inserted, nil
}

// bindValues converts normalized values to what the column affinities store.
func bindValues(values []any) []any {
	for i, v := range values {
		switch x := v.(type) {
		case bool:
			if x {
				values[i] = int64(1)
			} else {
				values[i] = int64(0)
			}
		case time.Time:
			values[i] = x.Format(dateLayout)
		}
	}
	return values
}

const listMoviesSQL = `
SELECT id,
       COALESCE(title, ''),
       COALESCE(original_title, ''),
       COALESCE(release_date, ''),
       COALESCE(poster_path, '')
FROM movies_metadata
ORDER BY id`

// ListMovies returns every movie ordered by id.
func (s *Store) ListMovies(ctx context.Context) ([]moviedb.Movie, error) {
	rows, err := s.db.QueryContext(ctx, listMoviesSQL)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []moviedb.Movie
	for rows.Next() {
		var m moviedb.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.ReleaseDate, &m.PosterPath); err != nil {
			return nil, fmt.Errorf("list movies: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// UpdatePoster sets poster_path for one movie.
func (s *Store) UpdatePoster(ctx context.Context, id int64, posterPath string) error {
	var affected int64
	err := s.retry.Execute(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `UPDATE movies_metadata SET poster_path = ? WHERE id = ?`, posterPath, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: update poster of movie %d: %w", moviedb.ErrWriteFailure, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: movie %d not found", moviedb.ErrWriteFailure, id)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
