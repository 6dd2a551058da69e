// Package testinfra starts throwaway infrastructure for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage matches the oldest server the COPY-based store is run against.
const PostgresImage = "postgres:17-alpine"

// MoviesContainer is a Postgres server holding an empty movies database.
type MoviesContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartMoviesPostgres starts a plain (non-TLS) server with a "movies"
// database owned by user "moviedb". The caller owns the container.
func StartMoviesPostgres(ctx context.Context) (*MoviesContainer, error) {
	ctr, err := postgres.Run(ctx, PostgresImage,
		postgres.WithDatabase("movies"),
		postgres.WithUsername("moviedb"),
		postgres.WithPassword("moviedb"),
		testcontainers.WithWaitStrategy(
			// The entrypoint restarts the server once after init.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	conn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}
	return &MoviesContainer{PostgresContainer: ctr, ConnString: conn}, nil
}
