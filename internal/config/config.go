// Package config loads moviedb.yaml and overlays environment variables on it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "moviedb.yaml"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultSQLitePath is used when the sqlite driver is selected without a database name.
const DefaultSQLitePath = "moviedb.sqlite"

// DatabaseConfig is the database section of moviedb.yaml.
// The connection fields are fallbacks for DB_* and PG* environment variables.
type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type TMDbConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Settings is everything both commands need besides the database connection.
type Settings struct {
	DataDir        string         `yaml:"data_dir"`
	Verbose        bool           `yaml:"verbose"`
	LogFormat      string         `yaml:"log_format"`
	PushgatewayURL string         `yaml:"pushgateway_url"`
	Database       DatabaseConfig `yaml:"database"`
	TMDb           TMDbConfig     `yaml:"tmdb"`

	// TMDbAPIKey only ever comes from the environment.
	TMDbAPIKey string `yaml:"-"`
}

// Load reads moviedb.yaml from dir.
func Load(dir string) (*Settings, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", configPath, moviedb.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Resolve loads moviedb.yaml from dir if present, overlays the environment
// read through getenv, and fills defaults. It does not validate.
func Resolve(dir string, getenv func(string) string) (*Settings, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = &Settings{}
	} else if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (s *Settings) applyEnv(getenv func(string) string) error {
	if v := getenv("MOVIEDB_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := getenv("MOVIEDB_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MOVIEDB_VERBOSE value %q: %w", v, moviedb.ErrInvalidConfig)
		}
		s.Verbose = verbose
	}
	if v := getenv("MOVIEDB_LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}
	if v := getenv("MOVIEDB_PUSHGATEWAY_URL"); v != "" {
		s.PushgatewayURL = v
	}
	if v := getenv("DB_DRIVER"); v != "" {
		s.Database.Driver = v
	}
	if v := getenv("TMDB_BASE_URL"); v != "" {
		s.TMDb.BaseURL = v
	}
	s.TMDbAPIKey = getenv("TMDB_API_KEY")
	return nil
}

func (s *Settings) applyDefaults() {
	if s.DataDir == "" {
		s.DataDir = moviedb.DefaultDataDir
	}
	s.Database.Driver = strings.ToLower(strings.TrimSpace(s.Database.Driver))
	if s.Database.Driver == "" {
		s.Database.Driver = DriverPostgres
	}
	if s.TMDb.BaseURL == "" {
		s.TMDb.BaseURL = moviedb.DefaultTMDbBaseURL
	}
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() error {
	var errs []error

	switch s.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q (want %s or %s): %w",
			s.Database.Driver, DriverPostgres, DriverSQLite, moviedb.ErrInvalidConfig))
	}

	switch strings.ToLower(s.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (want text or json): %w", s.LogFormat, moviedb.ErrInvalidConfig))
	}

	if s.PushgatewayURL != "" {
		if err := validateHTTPURL(s.PushgatewayURL); err != nil {
			errs = append(errs, fmt.Errorf("pushgateway_url: %w", err))
		}
	}
	if err := validateHTTPURL(s.TMDb.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("tmdb.base_url: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateTMDb checks the settings the poster job needs on top of Validate.
func (s *Settings) ValidateTMDb() error {
	if s.TMDbAPIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is not set: %w", moviedb.ErrInvalidConfig)
	}
	return nil
}

// SQLitePath returns the database file used by the sqlite driver.
func (s *Settings) SQLitePath() string {
	if s.Database.Name != "" {
		return s.Database.Name
	}
	return DefaultSQLitePath
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q: %w: %w", raw, moviedb.ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL: %w", raw, moviedb.ErrInvalidConfig)
	}
	return nil
}
