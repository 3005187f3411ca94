package graph

import (
	"context"
	"time"
)

// End is the terminal marker. It is not a node: a static edge or a
// routing-table entry targeting End stops the run and returns the final
// state. End cannot be registered as a node id.
const End = "__end__"

// StepFunc is the unit of work executed when a node runs.
//
// It receives a read-only snapshot of the current state and returns a
// partial update containing only the fields it modifies (nil is a valid
// empty update). A step may perform arbitrary external work, such as
// calling a hosted model or reading a database, but must not mutate the
// snapshot.
//
// If a step returns an error the engine wraps it in a *StepError and
// aborts the run; the engine never retries. Retry and timeout policy
// belong to the caller, layered around the step with WithRetry and
// WithTimeout.
type StepFunc func(ctx context.Context, snap State) (State, error)

// WithTimeout wraps a step with a per-execution deadline. When the
// deadline expires the step's context is cancelled and the step's error
// (typically context.DeadlineExceeded) aborts the run as a StepError.
//
// The engine itself imposes no per-node timeout; this wrapper is how a
// caller opts in.
func WithTimeout(step StepFunc, d time.Duration) StepFunc {
	return func(ctx context.Context, snap State) (State, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return step(ctx, snap)
	}
}

// WithRetry wraps a step to re-run it on failure, up to attempts total
// executions with a fixed delay between them. The last error is
// returned when all attempts fail. Context cancellation is respected
// between attempts.
func WithRetry(step StepFunc, attempts int, delay time.Duration) StepFunc {
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context, snap State) (State, error) {
		var lastErr error
		for i := 0; i < attempts; i++ {
			update, err := step(ctx, snap)
			if err == nil {
				return update, nil
			}
			lastErr = err

			if i == attempts-1 {
				break
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return nil, lastErr
	}
}
