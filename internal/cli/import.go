package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/moviedb/internal/checksum"
	"github.com/vvka-141/moviedb/internal/importer"
	"github.com/vvka-141/moviedb/internal/source"
	"github.com/vvka-141/moviedb/internal/tui"
	"github.com/vvka-141/moviedb/internal/ui"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

const importName = "moviedb-import"

// NewImportCommand builds the moviedb-import root command.
func NewImportCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   importName,
		Short: "Load the movie dataset into the database",
		Long: `moviedb-import drops and recreates movies_metadata, links, keywords and
credits, then loads them in that order from the data directory.

Rows of links, keywords and credits that reference unknown movies are
dropped. When a table fails to load you are asked whether to continue;
--force continues without asking.

Configuration comes from the environment, .env and moviedb.yaml:
  MOVIEDB_DATA_DIR   data directory (default ../the-movie-datasets)
  DB_DRIVER          postgres (default) or sqlite
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE

Exit Codes:
  0 - Import ran (table failures are reported, not fatal)
  1 - Data directory not found
  2 - CLI usage error`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Continue past failed tables without asking")
	return cmd
}

// ExecuteImport runs moviedb-import with the process arguments.
func ExecuteImport() error {
	return NewImportCommand().Execute()
}

func runImport(cmd *cobra.Command, force bool) error {
	sess, err := newSession(importName)
	if err != nil {
		// Only a missing data directory fails the process.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return nil
	}
	defer sess.close()
	logger := sess.logger

	if err := importer.CheckDataDir(sess.settings.DataDir, logger); err != nil {
		logger.Error("Data directory not found: %s", sess.settings.DataDir)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, sess.settings, logger)
	if err != nil {
		logger.Error("Could not open the database: %v", err)
		return nil
	}
	defer store.Close()

	var policy moviedb.StagePolicy
	if force {
		policy = ui.NewForcedPolicy(logger)
	} else {
		if !tui.IsInteractive() {
			logger.Info("Not attached to a terminal: a failed table stops the import unless --force is given")
		}
		policy = ui.NewInteractivePolicy()
	}

	tempDir, err := os.MkdirTemp("", importName+"-")
	if err != nil {
		logger.Error("Could not create a temporary directory: %v", err)
		return nil
	}
	defer os.RemoveAll(tempDir)

	loader := importer.NewLoader(sess.settings.DataDir, source.NewReader(source.WithTempDir(tempDir)), checksum.New(), logger)
	report := importer.NewPipeline(store, loader, policy, logger).Run(ctx)

	fmt.Fprintln(cmd.ErrOrStderr(), tui.FormatReport(report, tui.ColorEnabled()))
	if report.Err != nil && !errors.Is(report.Err, moviedb.ErrStageAborted) {
		logger.Error("Import failed: %v", report.Err)
	}
	return nil
}
