package moviedb

import "context"

// StagePolicy decides whether an import run proceeds after a table fails to load.
//
// Implementations:
//   - ForcedPolicy: logs the failure and always continues
//   - InteractivePolicy: asks the operator on the console
type StagePolicy interface {
	// ContinueAfterFailure is consulted once per failed table, except the last.
	//
	// Returns:
	//   - bool: true to load the remaining tables, false to stop the run
	//   - error: any error that occurred while reaching a decision
	ContinueAfterFailure(ctx context.Context, table string, cause error) (bool, error)
}
