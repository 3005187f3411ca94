package graph

// guard counts node executions for one run and trips when the count
// reaches the limit. A run that routes to End on exactly its limit's
// final step still succeeds; the guard only fires when another step
// would be needed.
type guard struct {
	limit int
	count int
}

func newGuard(limit int) *guard {
	if limit <= 0 {
		limit = DefaultMaxSteps
	}
	return &guard{limit: limit}
}

func (g *guard) tick() { g.count++ }

func (g *guard) exceeded() bool { return g.count >= g.limit }
