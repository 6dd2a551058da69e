// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. Both commands are short-lived batch jobs, so metrics are
// pushed once at process end instead of being scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/vvka-141/moviedb/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	rowCounter    *prometheus.CounterVec // moviedb_import_rows_total
	tableDuration *prometheus.SummaryVec // moviedb_import_table_duration_seconds
	posterCounter *prometheus.CounterVec // moviedb_posters_total
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway "job" grouping key and defaults to "moviedb".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "moviedb"
	}

	reg := prometheus.NewRegistry()

	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.ImportRowsTotal,
			Help: "Rows seen by the import per table and kind (parsed, loaded, duplicates, null_keys, filtered).",
		},
		[]string{"table", "kind"},
	)
	tableDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.ImportTableDurationSeconds,
			Help:       "Duration of table loads in seconds, partitioned by table and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"table", "status"},
	)
	posterCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.PostersTotal,
			Help: "Movies processed by the poster job, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	for name, c := range map[string]prometheus.Collector{
		"row counter":    rowCounter,
		"table duration": tableDuration,
		"poster counter": posterCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		rowCounter:    rowCounter,
		tableDuration: tableDuration,
		posterCounter: posterCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.ImportRowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["table"], labels["kind"]).Add(delta)

	case metrics.PostersTotal:
		if b.posterCounter == nil {
			return
		}
		b.posterCounter.WithLabelValues(labels["outcome"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.ImportTableDurationSeconds || b.tableDuration == nil {
		return
	}
	b.tableDuration.WithLabelValues(labels["table"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
