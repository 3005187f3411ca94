package graph

import (
	"github.com/google/uuid"

	"github.com/stategraph/stategraph-go/graph/emit"
	"github.com/stategraph/stategraph-go/graph/store"
)

// DefaultMaxSteps is the iteration guard applied when a run does not
// set its own limit. The guard can be raised or lowered per run but
// never disabled.
const DefaultMaxSteps = 100

// Option configures a single Invoke call.
type Option func(*runConfig)

type runConfig struct {
	maxSteps int
	runID    string
	emitter  emit.Emitter
	history  store.History[State]
	metrics  *Metrics
}

func newRunConfig(opts []Option) runConfig {
	cfg := runConfig{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSteps <= 0 {
		cfg.maxSteps = DefaultMaxSteps
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	if cfg.emitter == nil {
		cfg.emitter = emit.NewNullEmitter()
	}
	return cfg
}

// WithMaxSteps overrides the iteration guard for one run. Values below
// one fall back to DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(cfg *runConfig) { cfg.maxSteps = n }
}

// WithRunID sets the run identifier used in events, history records,
// and traces. Unset runs get a random UUID.
func WithRunID(id string) Option {
	return func(cfg *runConfig) { cfg.runID = id }
}

// WithEmitter routes the run's observability events to the given
// emitter. Unset runs emit nothing.
func WithEmitter(e emit.Emitter) Option {
	return func(cfg *runConfig) { cfg.emitter = e }
}

// WithHistory persists the state after every merged step to the given
// history backend.
func WithHistory(h store.History[State]) Option {
	return func(cfg *runConfig) { cfg.history = h }
}

// WithMetrics records run and step counters and latencies to the given
// metrics set.
func WithMetrics(m *Metrics) Option {
	return func(cfg *runConfig) { cfg.metrics = m }
}
