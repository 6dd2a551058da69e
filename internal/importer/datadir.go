package importer

import (
	"fmt"
	"os"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// CheckDataDir verifies that dir exists and logs its contents.
func CheckDataDir(dir string, logger moviedb.Logger) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, moviedb.ErrDataDirNotFound)
		}
		return fmt.Errorf("%s: %w: %w", dir, moviedb.ErrDataDirNotFound, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", dir, moviedb.ErrDataDirNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", dir, moviedb.ErrDataDirNotFound, err)
	}

	logger.Info("Data directory %s:", dir)
	for _, e := range entries {
		if e.IsDir() {
			logger.Info("  %s/", e.Name())
			continue
		}
		logger.Info("  %s", e.Name())
	}
	return nil
}
