package moviedb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ColumnType is the semantic type a raw source value is coerced into.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnFloat
	ColumnBoolean
	ColumnDate
	ColumnJSON // nested structure, stored as serialized JSON text
)

// String returns a human-readable string representation of the ColumnType.
func (c ColumnType) String() string {
	switch c {
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnFloat:
		return "float"
	case ColumnBoolean:
		return "boolean"
	case ColumnDate:
		return "date"
	case ColumnJSON:
		return "json"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Column describes one destination column.
type Column struct {
	Name string
	Type ColumnType

	// Size bounds text columns (VARCHAR(Size)); zero means unbounded.
	Size int
}

// Table describes one destination table and the source file that feeds it.
type Table struct {
	Name string

	// Source is the file name inside the data directory, e.g. "credits.csv.zip".
	Source string

	// Key is the primary key column; always an integer column.
	Key string

	Columns []Column

	// Primary marks the table whose keys restrict the others.
	Primary bool
}

// Compressed reports whether the source is a ZIP archive.
func (t *Table) Compressed() bool {
	return strings.HasSuffix(strings.ToLower(t.Source), ".zip")
}

// EntryName is the CSV member expected inside a compressed source.
func (t *Table) EntryName() string {
	if !t.Compressed() {
		return t.Source
	}
	return t.Source[:len(t.Source)-len(".zip")]
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row is one normalized record keyed by column name.
// A nil value is SQL NULL. Non-nil values are int64, float64, bool,
// time.Time or string, according to the column type.
type Row map[string]any

// Values returns the row's values in the table's column order.
func (r Row) Values(t *Table) []any {
	values := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		values[i] = r[c.Name]
	}
	return values
}

// TableResult is the outcome of loading a single table.
type TableResult struct {
	Table string

	// Parsed counts source records read from the CSV.
	Parsed int
	// Filtered counts records dropped because their key is not a known movie.
	Filtered int
	// Duplicates counts records dropped because their key was already seen.
	Duplicates int
	// NullKeys counts records dropped because their key was missing or unparseable.
	NullKeys int
	// Loaded counts rows appended to the store.
	Loaded int

	// SourceDigest is the SHA-256 of the source file as found on disk.
	SourceDigest string
	// RowsDigest is a digest over the appended rows, stable across runs.
	RowsDigest string

	Duration time.Duration

	// Rows holds the appended rows of the primary table; it stays nil for dependent tables.
	Rows []Row

	// Err is set when the table failed to load.
	Err error
	// Detail carries diagnostic context for a failure, such as a recovered stack trace.
	Detail string
}

// Failed reports whether the table did not load.
func (r TableResult) Failed() bool {
	return r.Err != nil
}

// Report summarizes one import run.
type Report struct {
	RunID  uuid.UUID
	Tables []TableResult

	// Success is true only when every table loaded.
	Success bool
	// Aborted is true when the stage policy stopped the run early.
	Aborted bool
	// Err is the run-level failure, such as a failed reset.
	Err error

	StartedAt time.Time
	Duration  time.Duration
}

// Result returns the result recorded for the named table.
func (r *Report) Result(table string) (TableResult, bool) {
	for _, t := range r.Tables {
		if t.Table == table {
			return t, true
		}
	}
	return TableResult{}, false
}

// Movie is the projection of movies_metadata used by poster enrichment.
type Movie struct {
	ID            int64
	Title         string
	OriginalTitle string
	// ReleaseDate is ISO formatted (YYYY-MM-DD) or empty.
	ReleaseDate string
	PosterPath  string
}

// Year returns the first four characters of the release date, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID parameters. If all three are provided, Service Principal
	// authentication is used; otherwise the DefaultAzureCredential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks the fields required by the selected AuthMethod.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}
	if c.AuthMethod == AuthMethodAWSIAM && c.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires a region: %w", ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodGoogleIAM && c.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("Google Cloud SQL IAM auth requires an instance name: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the configuration spelling of an auth method.
// The empty string selects standard authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
