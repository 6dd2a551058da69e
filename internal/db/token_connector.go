package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/moviedb/internal/retry"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// TokenBasedConnector connects with a short-lived cloud token (AWS IAM,
// Azure Entra ID) used as the PostgreSQL password.
type TokenBasedConnector struct {
	config        *moviedb.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        moviedb.Logger
}

var _ moviedb.Connector = (*TokenBasedConnector)(nil)

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error and warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *moviedb.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger moviedb.Logger) *TokenBasedConnector {
	if tokenProvider == nil {
		panic("tokenProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newConnectExecutor(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	c.logger.Verbose("Authenticating with %s", c.tokenProvider)

	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func() (string, error) {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token
		return BuildConnectionString(&configWithToken), nil
	})
}
