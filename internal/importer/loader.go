package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"slices"
	"time"

	"github.com/vvka-141/moviedb/internal/checksum"
	"github.com/vvka-141/moviedb/internal/source"
	"github.com/vvka-141/moviedb/internal/transform"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Loader loads a single table from its source file in the data directory.
type Loader struct {
	dataDir    string
	reader     *source.Reader
	calculator checksum.Calculator
	logger     moviedb.Logger
}

// NewLoader creates a Loader reading sources from dataDir.
func NewLoader(dataDir string, reader *source.Reader, calculator checksum.Calculator, logger moviedb.Logger) *Loader {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{
		dataDir:    dataDir,
		reader:     reader,
		calculator: calculator,
		logger:     logger,
	}
}

// Load reads, normalizes, filters (dependent tables only), deduplicates and
// appends one table. keys restricts dependent tables to known movies; a nil or
// empty set disables the filter.
//
// Load never panics and never returns an error: failures, including panics in
// any stage, are reported through the result's Err and Detail.
func (l *Loader) Load(ctx context.Context, store moviedb.Store, table *moviedb.Table, keys map[int64]struct{}) (result moviedb.TableResult) {
	start := time.Now()
	result.Table = table.Name
	path := filepath.Join(l.dataDir, table.Source)
	stage := "read"

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic while loading %s (%s): %v", table.Name, stage, r)
			result.Detail = string(debug.Stack())
		}
		result.Duration = time.Since(start)

		if result.Failed() {
			result.Rows = nil
			if result.Detail == "" {
				result.Detail = fmt.Sprintf("stage=%s source=%s", stage, path)
			}
			l.logger.Error("Loading %s failed: %v", table.Name, result.Err)
			l.logger.Error("%s", result.Detail)
		}
	}()

	l.logger.Info("Loading %s from %s", table.Name, table.Source)

	dataset, err := l.reader.Read(path, table)
	if err != nil {
		result.Err = err
		return result
	}
	result.Parsed = len(dataset.Rows)

	if !slices.Contains(dataset.Header, table.Key) {
		result.Err = fmt.Errorf("%s has no %q column: %w", table.Source, table.Key, moviedb.ErrParseFailure)
		return result
	}

	if digest, err := l.calculator.File(path); err == nil {
		result.SourceDigest = digest
	} else {
		l.logger.Verbose("  Could not digest %s: %v", path, err)
	}

	stage = "normalize"
	rows := transform.Normalize(table, dataset.Rows)

	if !table.Primary {
		stage = "filter"
		if len(keys) == 0 {
			l.logger.Info("  No movie ids available, loading %s unfiltered", table.Name)
		}
		before := len(rows)
		rows = transform.FilterByKeys(rows, table.Key, keys)
		result.Filtered = before - len(rows)
		if result.Filtered > 0 {
			l.logger.Info("  Dropped %d rows referencing unknown movies", result.Filtered)
		}
	}

	stage = "deduplicate"
	rows = transform.Deduplicate(rows, table.Key, func(stats transform.DedupStats) {
		result.Duplicates = stats.Duplicates
		result.NullKeys = stats.NullKeys
		if stats.NullKeys > 0 {
			l.logger.Info("  Dropped %d rows without a valid %s", stats.NullKeys, table.Key)
		}
		l.logger.Info("  Removed %d duplicate rows by %s", stats.Duplicates, table.Key)
	})

	stage = "append"
	n, err := store.Append(ctx, table, rows)
	if err != nil {
		if !errors.Is(err, moviedb.ErrWriteFailure) {
			err = fmt.Errorf("%w: %w", moviedb.ErrWriteFailure, err)
		}
		result.Err = err
		return result
	}
	result.Loaded = int(n)
	result.RowsDigest = l.calculator.Rows(table, rows)
	if table.Primary {
		result.Rows = rows
	}

	l.logger.Info("  Loaded %d rows into %s", n, table.Name)
	l.logger.Verbose("  %s source sha256=%s rows sha256=%s", table.Name, result.SourceDigest, result.RowsDigest)
	return result
}
