package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/moviedb/internal/retry"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns is small; the import pipeline is single-threaded.
	DefaultMaxConns = 4

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections alive across a long table load.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger moviedb.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("postgres %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}
}

func newConnectExecutor(logger moviedb.Logger) *retry.Executor {
	return retry.NewDefaultExecutor(retry.NewPostgreSQLErrorClassifier()).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
}

// StandardConnector implements the Connector interface for
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *moviedb.ConnectionConfig
	logger        moviedb.Logger
	retryExecutor *retry.Executor
}

var _ moviedb.Connector = (*StandardConnector)(nil)

// NewStandardConnector creates a new StandardConnector with the given configuration.
// Retry behavior uses the moviedb defaults: DefaultRetryMaxAttempts attempts,
// exponential backoff starting at DefaultRetryInitialDelay, max DefaultRetryMaxDelay.
func NewStandardConnector(config *moviedb.ConnectionConfig, logger moviedb.Logger) *StandardConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newConnectExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := BuildConnectionString(c.config)
	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func() (string, error) {
		return connStr, nil
	})
}

// connectWithRetry opens and pings a pool, rebuilding the connection string
// on every attempt so token-based callers can refresh credentials.
func connectWithRetry(
	ctx context.Context,
	executor *retry.Executor,
	config *moviedb.ConnectionConfig,
	logger moviedb.Logger,
	connString func() (string, error),
) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		connStr, err := connString()
		if err != nil {
			return err
		}

		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig, logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, config.Host, config.Port, config.Database)
		}

		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", moviedb.ErrConnectionFailed, err)
	}

	return pool, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *moviedb.ConnectionConfig, logger moviedb.Logger) (moviedb.Connector, error) {
	switch config.AuthMethod {
	case moviedb.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case moviedb.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case moviedb.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case moviedb.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, moviedb.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong DB_HOST or DB_PORT

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - DB_HOST is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong DB_PASSWORD or DB_USER
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but DB_SSLMODE is wrong
  - Certificate verification failed (try DB_SSLMODE=require)

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector signing RDS IAM tokens.
func newAWSConnector(config *moviedb.ConnectionConfig, logger moviedb.Logger) (moviedb.Connector, error) {
	tokens, err := newRDSIAMTokens(config)
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, tokens, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *moviedb.ConnectionConfig, logger moviedb.Logger) (moviedb.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires DB_GOOGLE_INSTANCE (project:region:instance): %w", moviedb.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires DB_USER: %w", moviedb.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector backed by Entra ID.
func newAzureConnector(config *moviedb.ConnectionConfig, logger moviedb.Logger) (moviedb.Connector, error) {
	tokens, err := newEntraTokens(config)
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, tokens, "Azure", logger), nil
}
