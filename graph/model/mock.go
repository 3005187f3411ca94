package model

import (
	"context"
	"sync"
)

// Mock is a scripted Client for tests: each Complete call returns the
// next configured response, repeating the last one when the script runs
// out. Calls records every request. Safe for concurrent use.
type Mock struct {
	// Responses is the script, returned in order.
	Responses []Response

	// Err, when set, is returned by every Complete call.
	Err error

	// Calls holds every request received, in order.
	Calls []Request

	mu   sync.Mutex
	next int
}

func (m *Mock) Complete(ctx context.Context, req Request) (Response, error) {
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return Response{}, m.Err
	}
	if len(m.Responses) == 0 {
		return Response{}, nil
	}

	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.next++
	}
	return m.Responses[idx], nil
}

// CallCount returns how many times Complete has been called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Reset clears the call history and rewinds the script.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.next = 0
}
