package retry

import (
	"context"
	"time"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Executor runs an operation until it succeeds, fails fatally, or runs out of retries.
type Executor struct {
	classifier moviedb.ErrorClassifier
	strategy   moviedb.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier moviedb.ErrorClassifier, strategy moviedb.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// NewDefaultExecutor uses the moviedb retry defaults.
func NewDefaultExecutor(classifier moviedb.ErrorClassifier) *Executor {
	return NewExecutor(classifier, NewExponentialBackoff(moviedb.DefaultRetryMaxAttempts))
}

// WithOnRetry returns a copy of the executor that calls callback before each wait.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation and retries transient failures.
// It returns nil on success, otherwise the last error or the context's error.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
