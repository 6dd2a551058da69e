package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// transientSQLStateClasses are SQLSTATE classes worth another attempt.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientSQLStateClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

// transientSQLStates are individual codes outside those classes.
var transientSQLStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// transientMessages match driver errors that carry no structured code.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
}

// PostgreSQLErrorClassifier recognizes transient Postgres and network errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientSQLStates[pgErr.Code] {
			return true
		}
		for _, class := range transientSQLStateClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		return false
	}

	if transient, structured := classifyNetworkError(err); structured {
		return transient
	}
	return matchesAny(err, transientMessages)
}

// SQLiteErrorClassifier treats a locked or busy database file as transient.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier creates a new SQLite error classifier.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *SQLiteErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return matchesAny(err, []string{"database is locked", "sqlite_busy", "database table is locked"})
}

// classifyNetworkError reports a verdict for *net.DNSError and *net.OpError.
// structured is false when err carries neither, leaving the caller to fall
// back on message matching.
func classifyNetworkError(err error) (transient, structured bool) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return false, true
		}
		return dnsErr.Temporary() || dnsErr.Timeout(), true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true, true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH), true
	}
	return false, false
}

func matchesAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var (
	_ moviedb.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
	_ moviedb.ErrorClassifier = (*SQLiteErrorClassifier)(nil)
)
