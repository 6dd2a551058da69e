package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/vvka-141/moviedb/internal/config"
	"github.com/vvka-141/moviedb/internal/logging"
	"github.com/vvka-141/moviedb/internal/metrics"
	"github.com/vvka-141/moviedb/internal/metrics/prompush"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// session is the ambient state shared by both commands.
type session struct {
	settings *config.Settings
	logger   moviedb.Logger
}

// newSession loads .env and moviedb.yaml from the working directory, builds
// the logger and installs the Pushgateway backend when one is configured.
// The returned session must be closed.
func newSession(jobName string) (*session, error) {
	_ = godotenv.Load()

	settings, err := config.Resolve(".", os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogFormat, settings.Verbose)
	if err != nil {
		return nil, err
	}
	logger.Verbose("%s", versionString(jobName))

	if settings.PushgatewayURL != "" {
		backend, err := prompush.NewBackend(jobName, settings.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		metrics.SetBackend(backend)
		logger.Verbose("Pushing metrics to %s as job %s", settings.PushgatewayURL, jobName)
	}

	return &session{settings: settings, logger: logger}, nil
}

// close pushes metrics and flushes the logger. Push errors are logged only.
func (s *session) close() {
	if err := metrics.Flush(); err != nil {
		s.logger.Error("Failed to push metrics: %v", err)
	}
	if syncer, ok := s.logger.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
}
