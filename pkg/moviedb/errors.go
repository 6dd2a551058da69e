package moviedb

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	result := loader.Load(ctx, store, table, keys)
//	if errors.Is(result.Err, moviedb.ErrMissingSource) {
//	    // the source file was never found, nothing was touched
//	}
var (
	// ErrDataDirNotFound indicates the dataset directory does not exist.
	ErrDataDirNotFound = errors.New("data directory not found")

	// ErrMissingSource indicates a table's source file is absent from the data directory.
	ErrMissingSource = errors.New("source file not found")

	// ErrParseFailure indicates a source file is structurally malformed.
	ErrParseFailure = errors.New("parse failure")

	// ErrWriteFailure indicates the destination store rejected an append.
	ErrWriteFailure = errors.New("write failure")

	// ErrResetFailed indicates the destination tables could not be dropped and recreated.
	ErrResetFailed = errors.New("schema reset failed")

	// ErrStageAborted indicates the stage policy chose to stop after a failed table.
	ErrStageAborted = errors.New("run aborted after failed stage")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrPosterSearch indicates the poster search API returned an unusable response.
	ErrPosterSearch = errors.New("poster search failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrDataDirNotFound):
		return ExitGeneralError
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// usagePatterns match the messages cobra returns for command line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"invalid argument",
}
