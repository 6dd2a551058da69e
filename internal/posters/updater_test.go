package posters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/internal/logging"
	"github.com/vvka-141/moviedb/internal/schema"
	"github.com/vvka-141/moviedb/internal/store/sqlite"
	"github.com/vvka-141/moviedb/internal/tmdb"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

type fakeMovieStore struct {
	movies    []moviedb.Movie
	listErr   error
	updateErr error
	updates   map[int64]string
}

func (s *fakeMovieStore) ListMovies(context.Context) ([]moviedb.Movie, error) {
	return s.movies, s.listErr
}

func (s *fakeMovieStore) UpdatePoster(_ context.Context, id int64, posterPath string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.updates == nil {
		s.updates = map[int64]string{}
	}
	s.updates[id] = posterPath
	return nil
}

type search struct {
	title, year string
}

type fakeSearcher struct {
	results map[string][]tmdb.Result
	errs    map[string]error
	calls   []search
}

func (f *fakeSearcher) SearchMovie(_ context.Context, title, year string) ([]tmdb.Result, error) {
	f.calls = append(f.calls, search{title, year})
	if err := f.errs[title]; err != nil {
		return nil, err
	}
	return f.results[title], nil
}

func TestUpdater_UpdatesDifferentPoster(t *testing.T) {
	store := &fakeMovieStore{movies: []moviedb.Movie{
		{ID: 1, Title: "Heat", OriginalTitle: "Heat", ReleaseDate: "1995-12-15", PosterPath: "/old.jpg"},
	}}
	searcher := &fakeSearcher{results: map[string][]tmdb.Result{
		"Heat": {{ReleaseDate: "1986-01-01", PosterPath: "/other.jpg"}, {ReleaseDate: "1995-12-15", PosterPath: "/heat.jpg"}},
	}}

	summary, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 1}, summary)
	assert.Equal(t, map[int64]string{1: "/heat.jpg"}, store.updates)
	assert.Equal(t, []search{{"Heat", "1995"}}, searcher.calls, "original title equal to title is not searched")
}

func TestUpdater_FallsBackToOriginalTitle(t *testing.T) {
	store := &fakeMovieStore{movies: []moviedb.Movie{
		{ID: 7, Title: "The Seventh Seal", OriginalTitle: "Det sjunde inseglet", ReleaseDate: "1957-02-16"},
	}}
	searcher := &fakeSearcher{
		errs:    map[string]error{"The Seventh Seal": errors.New("timeout")},
		results: map[string][]tmdb.Result{"Det sjunde inseglet": {{ReleaseDate: "1957-02-16", PosterPath: "/seal.jpg"}}},
	}

	summary, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, "/seal.jpg", store.updates[7])
	assert.Len(t, searcher.calls, 2)
}

func TestUpdater_Unchanged(t *testing.T) {
	store := &fakeMovieStore{movies: []moviedb.Movie{
		{ID: 1, Title: "Current", PosterPath: "/same.jpg"},
		{ID: 2, Title: "Unknown"},
		{ID: 3},
	}}
	searcher := &fakeSearcher{results: map[string][]tmdb.Result{
		"Current": {{PosterPath: "/same.jpg"}},
	}}

	summary, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Unchanged: 3}, summary)
	assert.Empty(t, store.updates)
	assert.Equal(t, []search{{"Current", ""}, {"Unknown", ""}}, searcher.calls)
}

func TestUpdater_FailuresAreCountedAndSkipped(t *testing.T) {
	store := &fakeMovieStore{movies: []moviedb.Movie{
		{ID: 1, Title: "Broken"},
		{ID: 2, Title: "Fine"},
	}}
	searcher := &fakeSearcher{
		errs:    map[string]error{"Broken": moviedb.ErrPosterSearch},
		results: map[string][]tmdb.Result{"Fine": {{PosterPath: "/fine.jpg"}}},
	}

	summary, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 1, Failed: 1}, summary)
	assert.Equal(t, 2, summary.Total())
}

func TestUpdater_UpdateFailureIsCounted(t *testing.T) {
	store := &fakeMovieStore{
		movies:    []moviedb.Movie{{ID: 1, Title: "Heat"}},
		updateErr: errors.New("read-only"),
	}
	searcher := &fakeSearcher{results: map[string][]tmdb.Result{"Heat": {{PosterPath: "/heat.jpg"}}}}

	summary, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, summary)
}

func TestUpdater_ListFailureIsFatal(t *testing.T) {
	store := &fakeMovieStore{listErr: errors.New("no such table")}

	_, err := NewUpdater(store, &fakeSearcher{}, logging.NewNullLogger()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestUpdater_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &fakeMovieStore{movies: []moviedb.Movie{{ID: 1, Title: "Heat"}}}
	searcher := &fakeSearcher{}

	_, err := NewUpdater(store, searcher, logging.NewNullLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, searcher.calls)
}

func TestUpdater_SQLiteAndTMDb(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":862,"release_date":"1995-10-30","poster_path":"/toy.jpg"}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "movies.sqlite"))
	require.NoError(t, err)
	defer store.Close()

	movies, _ := schema.Lookup(schema.MoviesMetadata)
	require.NoError(t, store.Reset(ctx, []*moviedb.Table{movies}))
	_, err = store.Append(ctx, movies, []moviedb.Row{{
		"id":             int64(862),
		"title":          "Toy Story",
		"original_title": "Toy Story",
		"release_date":   time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	client := tmdb.NewClient("k", tmdb.WithBaseURL(srv.URL))
	summary, err := NewUpdater(store, client, logging.NewNullLogger()).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, Summary{Updated: 1}, summary)

	listed, err := store.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "/toy.jpg", listed[0].PosterPath)
	assert.Equal(t, "1995", listed[0].Year())
}

func TestNewUpdater_PanicsOnNil(t *testing.T) {
	logger := logging.NewNullLogger()
	assert.Panics(t, func() { NewUpdater(nil, &fakeSearcher{}, logger) })
	assert.Panics(t, func() { NewUpdater(&fakeMovieStore{}, nil, logger) })
	assert.Panics(t, func() { NewUpdater(&fakeMovieStore{}, &fakeSearcher{}, nil) })
}
