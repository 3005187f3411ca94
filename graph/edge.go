package graph

// Predicate evaluates the post-merge state snapshot of a node and
// returns a routing key. The key is normalized (trimmed, lowercased)
// before it is looked up in the edge's routing table.
//
// Predicates should be pure functions of the snapshot: deterministic,
// no side effects.
type Predicate func(snap State) string

// Default is the routing-table fallback key. When a predicate returns a
// key with no table entry, the Default entry (if declared) is used;
// otherwise the run aborts with a *RoutingError. The fallback is always
// an explicit declaration, never an implicit route.
const Default = "default"

// conditionalEdge is a data-dependent transition: at run time the
// predicate's result selects the next node from the table.
type conditionalEdge struct {
	predicate Predicate
	table     map[string]string
}
