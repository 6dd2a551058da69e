package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/moviedb/internal/posters"
	"github.com/vvka-141/moviedb/internal/tmdb"
	"github.com/vvka-141/moviedb/internal/tui"
)

const postersName = "moviedb-posters"

// NewPostersCommand builds the moviedb-posters root command.
func NewPostersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   postersName,
		Short: "Backfill movie posters from TMDb",
		Long: `moviedb-posters searches TMDb for every movie in movies_metadata and stores
the poster path when it differs from the current one. Movies are searched by
title, then by original title, preferring a result from the release year.

Requires TMDB_API_KEY. The database is configured as for moviedb-import.

Exit Codes:
  0  - Success (individual movies may still have failed)
  1  - General error
  2  - CLI usage error
  10 - Invalid configuration
  11 - Database connection failed`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPosters(cmd)
		},
	}
}

// ExecutePosters runs moviedb-posters with the process arguments.
func ExecutePosters() error {
	return NewPostersCommand().Execute()
}

func runPosters(cmd *cobra.Command) error {
	sess, err := newSession(postersName)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.settings.ValidateTMDb(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, sess.settings, sess.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := tmdb.NewClient(sess.settings.TMDbAPIKey, tmdb.WithBaseURL(sess.settings.TMDb.BaseURL))
	summary, err := posters.NewUpdater(store, client, sess.logger).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), tui.FormatPosterSummary(summary.Updated, summary.Unchanged, summary.Failed, tui.ColorEnabled()))
	return nil
}
