package moviedb

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed
	ExitGeneralError    = 1  // Unknown error, or the data directory is missing
	ExitUsageError      = 2  // CLI usage error (invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
)

const (
	// DefaultDataDir is where the dataset files are expected, relative to the working directory.
	DefaultDataDir = "../the-movie-datasets"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultTMDbBaseURL is the TMDb v3 API root.
	DefaultTMDbBaseURL = "https://api.themoviedb.org/3"

	// AppName is reported to the database as application_name and used as the metrics job.
	AppName = "moviedb"
)
