// Package testing holds helpers shared by the integration tests.
package testing

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/internal/db"
	"github.com/vvka-141/moviedb/internal/testinfra"
)

// testConnEnv points the integration tests at an existing server instead of
// a container.
const testConnEnv = "MOVIEDB_TEST_CONN"

var sharedServer = sync.OnceValues(func() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctr, err := testinfra.StartMoviesPostgres(ctx)
	if err != nil {
		return "", err
	}
	return ctr.ConnString, nil
})

// RequireDatabase returns a connection string for the test server, skipping
// the test in -short mode or when neither MOVIEDB_TEST_CONN nor Docker is
// available. One container is shared by every test in the process.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if conn := os.Getenv(testConnEnv); conn != "" {
		return conn
	}
	conn, err := sharedServer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", testConnEnv, err)
	}
	return conn
}

// NewTestPool returns a pool on a scratch database that is dropped, together
// with its open sessions, when the test ends. Each test gets its own
// database so table resets never collide.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	server := RequireDatabase(t)
	name := "moviedb_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ident := pgx.Identifier{name}.Sanitize()

	admin, err := pgxpool.New(ctx, server)
	require.NoError(t, err, "connect to test server")
	t.Cleanup(admin.Close)

	_, err = admin.Exec(ctx, "CREATE DATABASE "+ident)
	require.NoError(t, err, "create %s", name)

	cfg, err := db.ParseConnectionString(server)
	require.NoError(t, err)
	cfg.Database = name

	pool, err := pgxpool.New(ctx, db.BuildConnectionString(cfg))
	require.NoError(t, err, "connect to %s", name)

	// Cleanups run last-in first-out: the pool closes before the drop.
	t.Cleanup(func() {
		_, _ = admin.Exec(ctx,
			"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()", name)
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
			t.Logf("drop %s: %v", name, err)
		}
	})
	t.Cleanup(pool.Close)
	return pool
}
