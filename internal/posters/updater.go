// Package posters backfills movies_metadata.poster_path from TMDb search results.
package posters

import (
	"context"
	"fmt"

	"github.com/vvka-141/moviedb/internal/metrics"
	"github.com/vvka-141/moviedb/internal/tmdb"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Searcher finds candidate movies by title and optional year.
type Searcher interface {
	SearchMovie(ctx context.Context, title, year string) ([]tmdb.Result, error)
}

var _ Searcher = (*tmdb.Client)(nil)

// Summary counts the outcome per movie.
type Summary struct {
	Updated   int
	Unchanged int // poster already current, or nothing found
	Failed    int
}

// Total returns the number of movies processed.
func (s Summary) Total() int {
	return s.Updated + s.Unchanged + s.Failed
}

// Updater walks every movie once, sequentially.
type Updater struct {
	store    moviedb.MovieStore
	searcher Searcher
	logger   moviedb.Logger
}

// NewUpdater creates an Updater.
func NewUpdater(store moviedb.MovieStore, searcher Searcher, logger moviedb.Logger) *Updater {
	if store == nil {
		panic("store cannot be nil")
	}
	if searcher == nil {
		panic("searcher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Updater{store: store, searcher: searcher, logger: logger}
}

// Run searches a poster for every movie and stores it when it differs from
// the current one. Only listing the movies is fatal; per-movie failures are
// logged, counted, and skipped. A cancelled ctx stops the walk.
func (u *Updater) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	movies, err := u.store.ListMovies(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list movies: %w", err)
	}
	u.logger.Info("Searching posters for %d movies", len(movies))

	for _, movie := range movies {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome := u.update(ctx, movie)
		switch outcome {
		case metrics.OutcomeUpdated:
			summary.Updated++
		case metrics.OutcomeFailed:
			summary.Failed++
		default:
			summary.Unchanged++
		}
		metrics.RecordPoster(outcome)
	}

	u.logger.Info("Posters: %d updated, %d unchanged, %d failed", summary.Updated, summary.Unchanged, summary.Failed)
	return summary, nil
}

func (u *Updater) update(ctx context.Context, movie moviedb.Movie) string {
	poster, searchErr := u.find(ctx, movie)

	if poster == "" || poster == movie.PosterPath {
		if searchErr != nil {
			return metrics.OutcomeFailed
		}
		u.logger.Verbose("Poster already current or not found: %s", movie.Title)
		return metrics.OutcomeUnchanged
	}

	if err := u.store.UpdatePoster(ctx, movie.ID, poster); err != nil {
		u.logger.Error("Poster update failed for %d: %v", movie.ID, err)
		return metrics.OutcomeFailed
	}
	u.logger.Info("Poster updated: %d -> %s", movie.ID, poster)
	return metrics.OutcomeUpdated
}

// find tries the title, then the original title when it differs. The first
// non-empty poster wins. The returned error is the last search failure.
func (u *Updater) find(ctx context.Context, movie moviedb.Movie) (string, error) {
	var titles []string
	if movie.Title != "" {
		titles = append(titles, movie.Title)
	}
	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		titles = append(titles, movie.OriginalTitle)
	}

	year := movie.Year()
	var lastErr error
	for _, title := range titles {
		results, err := u.searcher.SearchMovie(ctx, title, year)
		if err != nil {
			u.logger.Error("TMDb search failed for %q: %v", title, err)
			lastErr = err
			continue
		}
		if poster := tmdb.SelectPoster(results, year); poster != "" {
			return poster, nil
		}
	}
	return "", lastErr
}
