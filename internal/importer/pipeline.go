package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/moviedb/internal/metrics"
	"github.com/vvka-141/moviedb/internal/schema"
	"github.com/vvka-141/moviedb/internal/transform"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Pipeline runs a full import: reset, then every table in order.
type Pipeline struct {
	store   moviedb.Store
	loader  *Loader
	policy  moviedb.StagePolicy
	logger  moviedb.Logger
	tables  []*moviedb.Table
	onTable func(moviedb.TableResult)
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTables replaces the default schema.Tables() catalogue.
func WithTables(tables ...*moviedb.Table) PipelineOption {
	return func(p *Pipeline) {
		p.tables = tables
	}
}

// WithTableHook registers a callback invoked after every table load.
func WithTableHook(fn func(moviedb.TableResult)) PipelineOption {
	return func(p *Pipeline) {
		p.onTable = fn
	}
}

// NewPipeline creates a Pipeline writing to store.
func NewPipeline(store moviedb.Store, loader *Loader, policy moviedb.StagePolicy, logger moviedb.Logger, opts ...PipelineOption) *Pipeline {
	if store == nil {
		panic("store cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if policy == nil {
		panic("policy cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	p := &Pipeline{
		store:  store,
		loader: loader,
		policy: policy,
		logger: logger,
		tables: schema.Tables(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resets the destination and loads every table.
//
// Failures never stop the process: they are recorded in the report. A
// failed table other than the last one asks the policy whether to go on;
// earlier tables are never rolled back. Report.Success is true only when
// every table loaded.
func (p *Pipeline) Run(ctx context.Context) *moviedb.Report {
	report := &moviedb.Report{RunID: uuid.New(), StartedAt: time.Now()}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
		metrics.RecordRun(report)
	}()

	p.logger.Info("Import %s: resetting %d tables", report.RunID, len(p.tables))
	if err := p.store.Reset(ctx, p.tables); err != nil {
		if !errors.Is(err, moviedb.ErrResetFailed) {
			err = fmt.Errorf("%w: %w", moviedb.ErrResetFailed, err)
		}
		report.Err = err
		p.logger.Error("Reset failed, no tables loaded: %v", err)
		return report
	}

	var keys map[int64]struct{}
	failed := 0

	for i, table := range p.tables {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			report.Err = fmt.Errorf("%w before %s: %w", moviedb.ErrStageAborted, table.Name, err)
			p.logger.Error("Import interrupted: %v", err)
			break
		}

		var tableKeys map[int64]struct{}
		if !table.Primary {
			tableKeys = keys
		}

		result := p.loader.Load(ctx, p.store, table, tableKeys)
		if table.Primary && !result.Failed() {
			keys = transform.KeySet(result.Rows, table.Key)
		}
		report.Tables = append(report.Tables, result)
		metrics.RecordTable(result)
		if p.onTable != nil {
			p.onTable(result)
		}

		if !result.Failed() {
			continue
		}
		failed++
		if i == len(p.tables)-1 {
			break
		}

		cont, err := p.policy.ContinueAfterFailure(ctx, table.Name, result.Err)
		if err != nil {
			p.logger.Error("Could not get a decision after %s failed: %v", table.Name, err)
		}
		if err != nil || !cont {
			report.Aborted = true
			report.Err = fmt.Errorf("%w after %s failed", moviedb.ErrStageAborted, table.Name)
			p.logger.Info("Import stopped after %s", table.Name)
			break
		}
	}

	report.Success = report.Err == nil && failed == 0 && len(report.Tables) == len(p.tables)
	p.logger.Info("Import %s finished: %d of %d tables loaded", report.RunID, len(report.Tables)-failed, len(p.tables))
	return report
}
