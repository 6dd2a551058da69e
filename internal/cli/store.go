package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/moviedb/internal/config"
	"github.com/vvka-141/moviedb/internal/db"
	"github.com/vvka-141/moviedb/internal/store/postgres"
	"github.com/vvka-141/moviedb/internal/store/sqlite"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// destination is what the configured driver opens. Both stores serve the
// import and the poster job.
type destination interface {
	moviedb.Store
	moviedb.MovieStore
}

var (
	_ destination = (*postgres.Store)(nil)
	_ destination = (*sqlite.Store)(nil)
)

// openStore connects to the database selected by settings.Database.Driver.
func openStore(ctx context.Context, settings *config.Settings, logger moviedb.Logger) (destination, error) {
	switch settings.Database.Driver {
	case config.DriverSQLite:
		path := settings.SQLitePath()
		logger.Verbose("Opening SQLite database %s", path)
		return sqlite.Open(ctx, path)

	case config.DriverPostgres:
		connConfig, err := db.ResolveConnectionConfig(db.LoadFromEnvironment(os.Getenv), &settings.Database)
		if err != nil {
			return nil, err
		}
		logger.Verbose("Connecting to %s:%d/%s as %q (%s)",
			connConfig.Host, connConfig.Port, connConfig.Database, connConfig.Username, connConfig.AuthMethod)

		connector, err := db.NewConnector(connConfig, logger)
		if err != nil {
			return nil, err
		}
		pool, err := connector.Connect(ctx)
		if err != nil {
			return nil, err
		}
		if closer, ok := connector.(io.Closer); ok {
			return postgres.New(pool, closer.Close), nil
		}
		return postgres.New(pool), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q: %w", settings.Database.Driver, moviedb.ErrInvalidConfig)
	}
}
