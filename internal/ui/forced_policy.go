package ui

import (
	"context"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// ForcedPolicy implements the StagePolicy interface for unattended runs
// (--force). Every failure is logged and the run continues.
type ForcedPolicy struct {
	logger moviedb.Logger
}

// NewForcedPolicy creates a new ForcedPolicy.
func NewForcedPolicy(logger moviedb.Logger) moviedb.StagePolicy {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ForcedPolicy{logger: logger}
}

// ContinueAfterFailure logs the failure and continues unless ctx is done.
func (p *ForcedPolicy) ContinueAfterFailure(ctx context.Context, table string, cause error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.logger.Info("Loading %s failed, continuing with the remaining tables (--force): %v", table, cause)
	return true, nil
}

// Verify ForcedPolicy implements the StagePolicy interface at compile time
var _ moviedb.StagePolicy = (*ForcedPolicy)(nil)
