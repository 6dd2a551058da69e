package db

import (
	"fmt"
	"strconv"

	"github.com/vvka-141/moviedb/internal/config"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// EnvVars holds the connection-related environment.
// DB_* variables win over their libpq PG* counterparts.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	DATABASE_URL string

	DBAuthMethod     string
	DBGoogleInstance string
	AWSRegion        string

	// Azure SDK standard names
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads the connection environment through getenv.
func LoadFromEnvironment(getenv func(string) string) *EnvVars {
	return &EnvVars{
		DBHost:              getenv("DB_HOST"),
		DBPort:              getenv("DB_PORT"),
		DBUser:              getenv("DB_USER"),
		DBPassword:          getenv("DB_PASSWORD"),
		DBName:              getenv("DB_NAME"),
		DBSSLMode:           getenv("DB_SSLMODE"),
		PGHOST:              getenv("PGHOST"),
		PGPORT:              getenv("PGPORT"),
		PGUSER:              getenv("PGUSER"),
		PGPASSWORD:          getenv("PGPASSWORD"),
		PGDATABASE:          getenv("PGDATABASE"),
		PGSSLMODE:           getenv("PGSSLMODE"),
		DATABASE_URL:        getenv("DATABASE_URL"),
		DBAuthMethod:        getenv("DB_AUTH_METHOD"),
		DBGoogleInstance:    getenv("DB_GOOGLE_INSTANCE"),
		AWSRegion:           getenv("AWS_REGION"),
		AZURE_TENANT_ID:     getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: getenv("AZURE_CLIENT_SECRET"),
	}
}

// hasGranular reports whether any per-field connection variable is set.
func (e *EnvVars) hasGranular() bool {
	return first(e.DBHost, e.PGHOST, e.DBPort, e.PGPORT, e.DBUser, e.PGUSER, e.DBName, e.PGDATABASE) != ""
}

// ResolveConnectionConfig builds the Postgres connection from the environment
// and the database section of moviedb.yaml.
//
// Precedence per field: DB_* > PG* > moviedb.yaml > default. DATABASE_URL is
// used only when no per-field host, port, user or database variable is set.
// DB_PASSWORD/PGPASSWORD still apply on top of it, and DB_SSLMODE/PGSSLMODE
// apply when the URL carries no sslmode.
func ResolveConnectionConfig(env *EnvVars, file *config.DatabaseConfig) (*moviedb.ConnectionConfig, error) {
	if env == nil {
		env = &EnvVars{}
	}
	if file == nil {
		file = &config.DatabaseConfig{}
	}

	var cfg *moviedb.ConnectionConfig
	var err error
	if env.DATABASE_URL != "" && !env.hasGranular() {
		cfg, err = ParseConnectionString(env.DATABASE_URL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	} else {
		cfg, err = resolveFromGranularParams(env, file)
		if err != nil {
			return nil, err
		}
	}

	if pw := first(env.DBPassword, env.PGPASSWORD); pw != "" {
		cfg.Password = pw
	}
	cfg.SSLMode = first(cfg.SSLMode, env.DBSSLMode, env.PGSSLMODE, file.SSLMode, "prefer")
	if cfg.AppName == "" {
		cfg.AppName = moviedb.AppName
	}

	method, err := moviedb.ParseAuthMethod(first(env.DBAuthMethod, file.AuthMethod))
	if err != nil {
		return nil, err
	}
	cfg.AuthMethod = method
	cfg.AWSRegion = first(env.AWSRegion, file.AWSRegion)
	cfg.GoogleInstance = first(env.DBGoogleInstance, file.GoogleInstance)
	cfg.AzureTenantID = env.AZURE_TENANT_ID
	cfg.AzureClientID = env.AZURE_CLIENT_ID
	cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFromGranularParams(env *EnvVars, file *config.DatabaseConfig) (*moviedb.ConnectionConfig, error) {
	cfg := &moviedb.ConnectionConfig{
		Host:             first(env.DBHost, env.PGHOST, file.Host, "localhost"),
		Username:         first(env.DBUser, env.PGUSER, file.User),
		Database:         first(env.DBName, env.PGDATABASE, file.Name, "postgres"),
		AdditionalParams: make(map[string]string),
	}

	switch port := first(env.DBPort, env.PGPORT); {
	case port != "":
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid port value '%s': must be an integer: %w", port, moviedb.ErrInvalidConfig)
		}
		cfg.Port = p
	case file.Port != 0:
		cfg.Port = file.Port
	default:
		cfg.Port = 5432
	}

	return cfg, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
