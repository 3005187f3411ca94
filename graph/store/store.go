// Package store persists per-run execution history: the merged state
// after every step of a graph run. Backends: in-memory, SQLite, and
// MySQL.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run id has no recorded steps.
var ErrNotFound = errors.New("not found")

// StepRecord is one persisted step: the merged state immediately after
// a node execution.
//
// Type parameter S is the state type (must be JSON-serializable for the
// database backends).
type StepRecord[S any] struct {
	RunID     string
	Step      int
	NodeID    string
	State     S
	CreatedAt time.Time
}

// History persists the step-by-step state of graph runs.
//
// Implementations must be safe for concurrent use across runs. Step
// numbers are 1-indexed and unique within a run; appending a duplicate
// (runID, step) pair is an error.
type History[S any] interface {
	// AppendStep records the merged state after one node execution.
	AppendStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// Latest returns the most recent record for a run, or ErrNotFound.
	Latest(ctx context.Context, runID string) (StepRecord[S], error)

	// Steps returns every record for a run in step order, or ErrNotFound
	// when the run has none.
	Steps(ctx context.Context, runID string) ([]StepRecord[S], error)
}
