package emit

// Emitter receives observability events from graph runs.
//
// Implementations must be safe for concurrent use: a single emitter may
// serve many runs at once. Emit must not panic and should not block the
// run; backend failures are the emitter's problem, never the engine's.
type Emitter interface {
	Emit(event Event)
}
