package store

import (
	"context"
	"errors"
	"testing"
)

type testState struct {
	Trail []string `json:"trail"`
	Total int      `json:"total"`
}

// runHistoryContract exercises the behavior every History backend must
// share.
func runHistoryContract(t *testing.T, h History[testState]) {
	t.Helper()
	ctx := context.Background()

	t.Run("latest on unknown run", func(t *testing.T) {
		if _, err := h.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("steps on unknown run", func(t *testing.T) {
		if _, err := h.Steps(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("append and read back", func(t *testing.T) {
		states := []testState{
			{Trail: []string{"a"}, Total: 10},
			{Trail: []string{"a", "b"}, Total: 30},
			{Trail: []string{"a", "b", "c"}, Total: 60},
		}
		nodes := []string{"first", "second", "third"}
		for i, state := range states {
			if err := h.AppendStep(ctx, "contract-run", i+1, nodes[i], state); err != nil {
				t.Fatalf("append step %d: %v", i+1, err)
			}
		}

		latest, err := h.Latest(ctx, "contract-run")
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if latest.Step != 3 || latest.NodeID != "third" || latest.State.Total != 60 {
			t.Errorf("unexpected latest record: %+v", latest)
		}

		steps, err := h.Steps(ctx, "contract-run")
		if err != nil {
			t.Fatalf("steps: %v", err)
		}
		if len(steps) != 3 {
			t.Fatalf("expected 3 steps, got %d", len(steps))
		}
		for i, rec := range steps {
			if rec.Step != i+1 {
				t.Errorf("steps out of order: position %d holds step %d", i, rec.Step)
			}
			if rec.RunID != "contract-run" {
				t.Errorf("wrong run id: %q", rec.RunID)
			}
		}
		if len(steps[2].State.Trail) != 3 {
			t.Errorf("state lost in round trip: %+v", steps[2].State)
		}
	})

	t.Run("duplicate step rejected", func(t *testing.T) {
		if err := h.AppendStep(ctx, "dup-run", 1, "a", testState{}); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := h.AppendStep(ctx, "dup-run", 1, "b", testState{}); err == nil {
			t.Fatal("expected error for duplicate (run, step)")
		}
	})

	t.Run("runs are isolated", func(t *testing.T) {
		if err := h.AppendStep(ctx, "iso-one", 1, "a", testState{Total: 1}); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := h.AppendStep(ctx, "iso-two", 1, "a", testState{Total: 2}); err != nil {
			t.Fatalf("append: %v", err)
		}

		one, err := h.Latest(ctx, "iso-one")
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if one.State.Total != 1 {
			t.Errorf("run isolation broken: %+v", one)
		}
	})
}
