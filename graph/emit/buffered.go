package emit

import "sync"

// BufferedEmitter stores events in memory, grouped by run id. It is
// the emitter of choice for tests and for post-run inspection; events
// accumulate until cleared, so long-lived processes should Clear runs
// they are done with.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// NewBufferedEmitter returns an empty in-memory emitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// Events returns a copy of the events emitted for a run, in emission
// order. Unknown run ids return an empty slice.
func (b *BufferedEmitter) Events(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// EventsByMsg returns a run's events whose Msg matches, in emission
// order.
func (b *BufferedEmitter) EventsByMsg(runID, msg string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, event := range b.events[runID] {
		if event.Msg == msg {
			out = append(out, event)
		}
	}
	return out
}

// Clear drops stored events for one run, or for every run when runID is
// empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}
