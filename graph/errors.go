// Package graph provides a compiled state-graph execution engine:
// named nodes joined by static and conditional edges, a shared state
// merged per-field by reducers, and a sequential runtime with an
// iteration guard.
package graph

import (
	"fmt"
	"strings"
)

// DefinitionError reports one or more structural defects found while
// building or compiling a graph. Issues holds every defect detected so
// a caller can fix a broken definition in one pass.
type DefinitionError struct {
	Issues []string
}

func (e *DefinitionError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "invalid graph definition"
	case 1:
		return "invalid graph definition: " + e.Issues[0]
	}
	return fmt.Sprintf("invalid graph definition (%d issues):\n  - %s",
		len(e.Issues), strings.Join(e.Issues, "\n  - "))
}

// RoutingError reports a conditional edge whose predicate produced a
// key with no table entry and no Default fallback. Key holds the
// normalized key; Path lists every node executed before the failure,
// ending with the node whose edge failed to resolve.
type RoutingError struct {
	Node string
	Key  string
	Path []string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no route from node %q for key %q (path: %s)",
		e.Node, e.Key, strings.Join(e.Path, " -> "))
}

// StepError wraps a failure returned by a node's step function. Path
// ends with the failing node.
type StepError struct {
	Node string
	Path []string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("node %q failed (path: %s): %v",
		e.Node, strings.Join(e.Path, " -> "), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// MergeError reports a reducer failure while merging one field of a
// partial update. The update is applied atomically, so on a MergeError
// no field of the update reached the state. Path is attached by the
// engine and ends with the node whose update failed to merge.
type MergeError struct {
	Field        string
	OldType      string
	IncomingType string
	Path         []string
	Err          error
}

func (e *MergeError) Error() string {
	msg := fmt.Sprintf("cannot merge field %q (old %s, incoming %s): %v",
		e.Field, e.OldType, e.IncomingType, e.Err)
	if len(e.Path) > 0 {
		msg += " (path: " + strings.Join(e.Path, " -> ") + ")"
	}
	return msg
}

func (e *MergeError) Unwrap() error { return e.Err }

// LimitError reports a run stopped by the iteration guard. Path holds
// the full execution path (its length equals Limit) and State holds the
// merged state at the moment the guard fired, for diagnostics.
type LimitError struct {
	Limit int
	Path  []string
	State State
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("run exceeded iteration limit %d (last node: %s)",
		e.Limit, e.Path[len(e.Path)-1])
}

// CanceledError reports a run stopped between steps because its context
// was cancelled or its deadline expired. Path lists the nodes that
// completed before the stop. Err is the context's error, so
// errors.Is(err, context.Canceled) and context.DeadlineExceeded both
// work through the wrapper.
type CanceledError struct {
	Path []string
	Err  error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("run cancelled after %d steps: %v", len(e.Path), e.Err)
}

func (e *CanceledError) Unwrap() error { return e.Err }
