// Package metrics records import and poster-job counters behind a pluggable
// backend. The default backend discards everything, so callers never need
// to check whether metrics are configured.
//
// Concrete backends live in subpackages (see prompush).
package metrics

import (
	"sync"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Metric names shared with the backends.
const (
	ImportRowsTotal            = "moviedb_import_rows_total"
	ImportTableDurationSeconds = "moviedb_import_table_duration_seconds"
	PostersTotal               = "moviedb_posters_total"
)

// Row kinds reported under ImportRowsTotal.
const (
	KindParsed     = "parsed"
	KindLoaded     = "loaded"
	KindDuplicates = "duplicates"
	KindNullKeys   = "null_keys"
	KindFiltered   = "filtered"
)

// Poster outcomes reported under PostersTotal.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordTable reports the row counts and duration of one table load.
func RecordTable(r moviedb.TableResult) {
	b := current()

	status := "success"
	if r.Failed() {
		status = "failure"
	}

	for kind, n := range map[string]int{
		KindParsed:     r.Parsed,
		KindLoaded:     r.Loaded,
		KindDuplicates: r.Duplicates,
		KindNullKeys:   r.NullKeys,
		KindFiltered:   r.Filtered,
	} {
		if n <= 0 {
			continue
		}
		b.IncCounter(ImportRowsTotal, float64(n), Labels{"table": r.Table, "kind": kind})
	}

	b.ObserveHistogram(ImportTableDurationSeconds, r.Duration.Seconds(), Labels{"table": r.Table, "status": status})
}

// RecordPoster counts one movie processed by the poster job.
func RecordPoster(outcome string) {
	current().IncCounter(PostersTotal, 1, Labels{"outcome": outcome})
}

// RecordRun reports the total duration of an import run under table="all".
func RecordRun(r *moviedb.Report) {
	status := "success"
	if !r.Success {
		status = "failure"
	}
	current().ObserveHistogram(ImportTableDurationSeconds, r.Duration.Seconds(), Labels{"table": "all", "status": status})
}
