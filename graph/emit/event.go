// Package emit defines the observability event stream for graph runs
// and a set of emitter backends: null, log (text or JSONL), in-memory
// buffered, and OpenTelemetry spans.
package emit

// Event is one observability record from a graph run.
//
// The engine emits run_start when a run begins, node_end after every
// merged step, run_end on success, and run_error on any failure.
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Step is the 1-indexed count of completed node executions.
	// Zero for run_start.
	Step int

	// NodeID is the node this event concerns. For run-level events it
	// holds the start node (run_start) or the last executed node.
	NodeID string

	// Msg names the event kind: run_start, node_end, run_end, run_error.
	Msg string

	// Meta carries event-specific data. run_error sets "status" and
	// "error".
	Meta map[string]any
}
