package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/moviedb/internal/retry"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// GoogleCloudSQLConnector reaches a Cloud SQL instance through the Cloud SQL
// dialer with IAM database authentication. The dialer outlives the pool, so
// Close must be called once the pool is closed.
type GoogleCloudSQLConnector struct {
	config        *moviedb.ConnectionConfig
	instance      string
	logger        moviedb.Logger
	retryExecutor *retry.Executor
	newDialer     func(ctx context.Context) (*cloudsqlconn.Dialer, error)
	dialer        *cloudsqlconn.Dialer
}

var _ moviedb.Connector = (*GoogleCloudSQLConnector)(nil)

// NewGoogleCloudSQLConnector creates a connector for instance, given as
// project:region:instance.
func NewGoogleCloudSQLConnector(config *moviedb.ConnectionConfig, instance string, logger moviedb.Logger) *GoogleCloudSQLConnector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &GoogleCloudSQLConnector{
		config:        config,
		instance:      instance,
		logger:        logger,
		retryExecutor: newConnectExecutor(logger),
		newDialer: func(ctx context.Context) (*cloudsqlconn.Dialer, error) {
			return cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		},
	}
}

// Connect opens a pool whose connections are dialed by the Cloud SQL dialer.
// The pool is opened and pinged through the retry executor; the dialer is
// created once and reused across attempts.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	if c.dialer == nil {
		dialer, err := c.newDialer(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create Cloud SQL dialer: %w", moviedb.ErrConnectionFailed, err)
		}
		c.dialer = dialer
	}

	// The host is never resolved: DialFunc routes every connection to the instance.
	cfg := *c.config
	cfg.Host = "cloudsql"
	cfg.Password = ""
	cfg.SSLMode = "disable"
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	connStr := BuildConnectionString(&cfg)

	var pool *pgxpool.Pool
	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}
		poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return c.dialer.Dial(ctx, c.instance)
		}
		configurePool(poolConfig, c.logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.instance, c.config.Port, c.config.Database)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, c.instance, c.config.Port, c.config.Database)
		}
		pool = p
		return nil
	})
	if err != nil {
		c.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: %w", moviedb.ErrConnectionFailed, err)
	}

	c.logger.Verbose("Connected to Cloud SQL instance %s as %s", c.instance, c.config.Username)
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
