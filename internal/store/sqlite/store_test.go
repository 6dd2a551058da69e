package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/internal/schema"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "moviedb.sqlite"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Reset(context.Background(), schema.Tables()))
	return s
}

func mustLookup(t *testing.T, name string) *moviedb.Table {
	t.Helper()
	table, ok := schema.Lookup(name)
	require.True(t, ok, name)
	return table
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.ErrorIs(t, err, moviedb.ErrInvalidConfig)
}

func TestReset_CreatesEmptyTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range schema.Tables() {
		var n int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + schema.QuoteIdent(table.Name)).Scan(&n)
		require.NoError(t, err, table.Name)
		assert.Zero(t, n, table.Name)
	}
}

func TestReset_DropsExistingRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	links := mustLookup(t, schema.Links)

	_, err := s.Append(ctx, links, []moviedb.Row{{"movieId": int64(1), "imdbId": "0114709", "tmdbId": "862"}})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx, schema.Tables()))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&n))
	assert.Zero(t, n)
}

func TestAppend_ConvertsValues(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	metadata := mustLookup(t, schema.MoviesMetadata)

	n, err := s.Append(ctx, metadata, []moviedb.Row{{
		"id":           int64(862),
		"adult":        false,
		"video":        true,
		"budget":       30000000.0,
		"release_date": time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC),
		"title":        "Toy Story",
		"genres":       `[{"id": 16, "name": "Animation"}]`,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var (
		adult, video int64
		budget       float64
		released     string
		genres       string
		homepage     sql.NullString
	)
	err = s.db.QueryRow(`SELECT adult, video, budget, release_date, genres, homepage FROM movies_metadata WHERE id = 862`).
		Scan(&adult, &video, &budget, &released, &genres, &homepage)
	require.NoError(t, err)

	assert.Equal(t, int64(0), adult)
	assert.Equal(t, int64(1), video)
	assert.Equal(t, 30000000.0, budget)
	assert.Equal(t, "1995-10-30", released)
	assert.Equal(t, `[{"id": 16, "name": "Animation"}]`, genres)
	assert.False(t, homepage.Valid, "absent columns are NULL")
}

func TestAppend_QuotedColumns(t *testing.T) {
	s := openTestStore(t)
	credits := mustLookup(t, schema.Credits)

	n, err := s.Append(context.Background(), credits, []moviedb.Row{
		{"id": int64(1), "cast": "[]", "crew": "[]"},
		{"id": int64(2), "cast": nil, "crew": `[{"job": "Director"}]`},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAppend_DuplicateKeyRollsBack(t *testing.T) {
	s := openTestStore(t)
	keywords := mustLookup(t, schema.Keywords)

	n, err := s.Append(context.Background(), keywords, []moviedb.Row{
		{"id": int64(1), "keywords": "[]"},
		{"id": int64(1), "keywords": "[]"},
	})
	assert.ErrorIs(t, err, moviedb.ErrWriteFailure)
	assert.Zero(t, n)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM keywords`).Scan(&count))
	assert.Zero(t, count, "a failed append writes nothing")
}

func TestAppend_Empty(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Append(context.Background(), mustLookup(t, schema.Keywords), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListMoviesAndUpdatePoster(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	metadata := mustLookup(t, schema.MoviesMetadata)

	_, err := s.Append(ctx, metadata, []moviedb.Row{
		{"id": int64(8844), "title": "Jumanji", "original_title": "Jumanji"},
		{"id": int64(862), "title": "Toy Story", "original_title": "Toy Story",
			"release_date": time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC), "poster_path": "/old.jpg"},
	})
	require.NoError(t, err)

	movies, err := s.ListMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []moviedb.Movie{
		{ID: 862, Title: "Toy Story", OriginalTitle: "Toy Story", ReleaseDate: "1995-10-30", PosterPath: "/old.jpg"},
		{ID: 8844, Title: "Jumanji", OriginalTitle: "Jumanji"},
	}, movies)

	require.NoError(t, s.UpdatePoster(ctx, 8844, "/jumanji.jpg"))
	movies, err = s.ListMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/jumanji.jpg", movies[1].PosterPath)

	assert.ErrorIs(t, s.UpdatePoster(ctx, 1, "/x.jpg"), moviedb.ErrWriteFailure)
}

func TestBindValues(t *testing.T) {
	got := bindValues([]any{true, false, time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), "x", nil, int64(4), 1.5})
	assert.Equal(t, []any{int64(1), int64(0), "2001-02-03", "x", nil, int64(4), 1.5}, got)
}
