package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/stategraph/stategraph-go/graph/emit"
)

// Graph is a compiled, immutable graph definition produced by
// Builder.Compile. A Graph holds no run state: every Invoke call runs
// with its own state store, path, and iteration guard, so a single
// Graph is safe to share across concurrent runs.
type Graph struct {
	nodes    map[string]StepFunc
	edges    map[string]string
	cond     map[string]conditionalEdge
	reducers map[string]Reducer
	start    string
}

// Start returns the id of the entry node.
func (g *Graph) Start() string { return g.start }

// Nodes returns the ids of all registered nodes.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Invoke runs the graph to completion from the start node.
//
// Each step executes the current node against a snapshot of the state,
// merges the node's partial update through the field reducers, then
// resolves the next node from the current node's edge. Routing to End
// finishes the run and returns the final merged state.
//
// Cancellation is checked between steps: a step already running is not
// interrupted by the engine (use WithTimeout on the step for that), but
// no further node starts once ctx is done and the run returns a
// *CanceledError.
//
// Every run is bounded by an iteration guard (DefaultMaxSteps unless
// WithMaxSteps is given). A run that needs more steps than the limit
// fails with a *LimitError carrying the path and the state so far.
//
// On failure the returned error is one of *StepError, *MergeError,
// *RoutingError, *LimitError, or *CanceledError; each carries the
// execution path. The initial state is never mutated.
func (g *Graph) Invoke(ctx context.Context, initial State, opts ...Option) (State, error) {
	cfg := newRunConfig(opts)
	states := newStateStore(g.reducers, initial)
	iter := newGuard(cfg.maxSteps)
	path := make([]string, 0, 8)
	current := g.start

	cfg.emitter.Emit(emit.Event{
		RunID:  cfg.runID,
		NodeID: current,
		Msg:    "run_start",
	})

	for {
		select {
		case <-ctx.Done():
			err := &CanceledError{Path: clonePath(path), Err: ctx.Err()}
			g.finishRun(cfg, path, "cancelled", err)
			return nil, err
		default:
		}

		path = append(path, current)
		started := time.Now()

		update, err := g.nodes[current](ctx, states.Snapshot())
		if err != nil {
			cfg.metrics.RecordStep(current, time.Since(started), "error")
			stepErr := &StepError{Node: current, Path: clonePath(path), Err: err}
			g.finishRun(cfg, path, "step_error", stepErr)
			return nil, stepErr
		}

		if err := states.Apply(update); err != nil {
			cfg.metrics.RecordStep(current, time.Since(started), "error")
			mergeErr, ok := err.(*MergeError)
			if ok {
				mergeErr.Path = clonePath(path)
				cfg.metrics.RecordMergeError(mergeErr.Field)
			}
			g.finishRun(cfg, path, "merge_error", err)
			return nil, err
		}

		iter.tick()
		cfg.metrics.RecordStep(current, time.Since(started), "success")
		cfg.emitter.Emit(emit.Event{
			RunID:  cfg.runID,
			Step:   iter.count,
			NodeID: current,
			Msg:    "node_end",
		})

		if cfg.history != nil {
			if err := cfg.history.AppendStep(ctx, cfg.runID, iter.count, current, states.Snapshot()); err != nil {
				err = fmt.Errorf("persist step %d (node %q): %w", iter.count, current, err)
				g.finishRun(cfg, path, "history_error", err)
				return nil, err
			}
		}

		next, err := g.nextNode(current, states, path)
		if err != nil {
			g.finishRun(cfg, path, "routing_error", err)
			return nil, err
		}

		if next == End {
			final := states.Snapshot()
			cfg.metrics.RecordRun("success")
			cfg.emitter.Emit(emit.Event{
				RunID:  cfg.runID,
				Step:   iter.count,
				NodeID: current,
				Msg:    "run_end",
			})
			return final, nil
		}

		if iter.exceeded() {
			limitErr := &LimitError{
				Limit: iter.limit,
				Path:  clonePath(path),
				State: states.Snapshot(),
			}
			g.finishRun(cfg, path, "limit_exceeded", limitErr)
			return nil, limitErr
		}

		current = next
	}
}

// nextNode resolves the outgoing edge of a just-executed node. Compile
// guarantees every reachable node has exactly one edge, so one of the
// lookups always hits.
func (g *Graph) nextNode(current string, states *stateStore, path []string) (string, error) {
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	return route(current, g.cond[current], states.Snapshot(), path)
}

func (g *Graph) finishRun(cfg runConfig, path []string, status string, err error) {
	cfg.metrics.RecordRun(status)

	last := ""
	if len(path) > 0 {
		last = path[len(path)-1]
	}
	cfg.emitter.Emit(emit.Event{
		RunID:  cfg.runID,
		Step:   len(path),
		NodeID: last,
		Msg:    "run_error",
		Meta:   map[string]any{"status": status, "error": err.Error()},
	})
}
