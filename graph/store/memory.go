package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemHistory is an in-memory History for tests and single-process use.
// Records are copied on read so callers cannot mutate stored history.
type MemHistory[S any] struct {
	mu   sync.RWMutex
	runs map[string][]StepRecord[S]
}

// NewMemHistory returns an empty in-memory history.
func NewMemHistory[S any]() *MemHistory[S] {
	return &MemHistory[S]{runs: make(map[string][]StepRecord[S])}
}

func (m *MemHistory[S]) AppendStep(_ context.Context, runID string, step int, nodeID string, state S) error {
	if runID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if step < 1 {
		return fmt.Errorf("step must be >= 1, got %d", step)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.runs[runID] {
		if rec.Step == step {
			return fmt.Errorf("run %q already has step %d", runID, step)
		}
	}
	m.runs[runID] = append(m.runs[runID], StepRecord[S]{
		RunID:     runID,
		Step:      step,
		NodeID:    nodeID,
		State:     state,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemHistory[S]) Latest(_ context.Context, runID string) (StepRecord[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.runs[runID]
	if len(records) == 0 {
		var zero StepRecord[S]
		return zero, ErrNotFound
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.Step > latest.Step {
			latest = rec
		}
	}
	return latest, nil
}

func (m *MemHistory[S]) Steps(_ context.Context, runID string) ([]StepRecord[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.runs[runID]
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	out := make([]StepRecord[S], len(records))
	copy(out, records)
	sortByStep(out)
	return out, nil
}

func sortByStep[S any](records []StepRecord[S]) {
	// Insertion sort: histories are short and usually appended in order.
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].Step < records[j-1].Step; j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
