package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = &pgconn.PgError{Code: "08006", Message: "connection failure"}

// flakyOperation fails with transient errors until it has been called succeedOn times.
type flakyOperation struct {
	calls     int
	succeedOn int
	finalErr  error
}

func (f *flakyOperation) run(ctx context.Context) error {
	f.calls++
	if f.calls < f.succeedOn {
		return errTransient
	}
	return f.finalErr
}

func fastBackoff(maxAttempts int) *ExponentialBackoff {
	return NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	op := &flakyOperation{succeedOn: 1}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).Execute(context.Background(), op.run)

	require.NoError(t, err)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_SuccessAfterRetries(t *testing.T) {
	op := &flakyOperation{succeedOn: 4}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5)).Execute(context.Background(), op.run)

	require.NoError(t, err)
	assert.Equal(t, 4, op.calls)
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	calls := 0

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5)).Execute(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ExhaustsRetries(t *testing.T) {
	op := &flakyOperation{succeedOn: 100}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(2)).Execute(context.Background(), op.run)

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 3, op.calls, "one attempt plus two retries")
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &flakyOperation{succeedOn: 2}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(0)).Execute(context.Background(), op.run)

	assert.Error(t, err)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_TransientThenFatal(t *testing.T) {
	fatal := errors.New("syntax error")
	op := &flakyOperation{succeedOn: 3, finalErr: fatal}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5)).Execute(context.Background(), op.run)

	assert.Equal(t, fatal, err)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0))
	executor := NewExecutor(NewPostgreSQLErrorClassifier(), slow).WithOnRetry(func(int, error, time.Duration) {
		cancel()
	})

	err := executor.Execute(ctx, (&flakyOperation{succeedOn: 100}).run)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	var attempts []int
	var delays []time.Duration
	base := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5))
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
		assert.Equal(t, errTransient, err)
	})

	require.NoError(t, executor.Execute(context.Background(), (&flakyOperation{succeedOn: 3}).run))

	assert.Equal(t, []int{0, 1}, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
	assert.Nil(t, base.onRetry, "WithOnRetry leaves the receiver unchanged")
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}
