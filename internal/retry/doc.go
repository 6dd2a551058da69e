// Package retry retries operations that fail with transient errors,
// waiting an exponentially growing, jittered delay between attempts.
//
// It is used while establishing database connections, never for row writes:
// a failed append is reported, not replayed.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Executor instances are safe for concurrent use. WithOnRetry returns a copy.
package retry
