package graph

import "fmt"

// Builder accumulates nodes, edges, and reducers for a graph definition.
//
// Build order is flexible: edges may reference nodes that are added
// later. Every structural rule is enforced at Compile, which either
// returns an immutable *Graph or a *DefinitionError listing every
// defect found. Builder methods also surface defects immediately
// through their error return for callers that prefer to fail fast;
// ignoring those errors is safe because Compile re-reports them.
//
// Example:
//
//	b := graph.NewBuilder()
//	b.AddReducer("history", graph.Append)
//	b.AddNode("classify", classifyStep)
//	b.AddNode("finalize", finalizeStep)
//	b.AddConditionalEdge("classify", routeByPriority, map[string]string{
//	    "high":        "review",
//	    graph.Default: "finalize",
//	})
//	b.AddEdge("finalize", graph.End)
//	g, err := b.Compile("classify")
type Builder struct {
	nodes    map[string]StepFunc
	edges    map[string]string
	cond     map[string]conditionalEdge
	reducers map[string]Reducer
	defects  []string
}

// NewBuilder returns an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:    make(map[string]StepFunc),
		edges:    make(map[string]string),
		cond:     make(map[string]conditionalEdge),
		reducers: make(map[string]Reducer),
	}
}

func (b *Builder) defect(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	b.defects = append(b.defects, msg)
	return &DefinitionError{Issues: []string{msg}}
}

// AddNode registers a named node backed by a step function. Node ids
// must be unique and may not be empty or the End marker.
func (b *Builder) AddNode(id string, step StepFunc) error {
	if id == "" {
		return b.defect("node id cannot be empty")
	}
	if id == End {
		return b.defect("node id %q is reserved for the terminal marker", End)
	}
	if step == nil {
		return b.defect("node %q: step function cannot be nil", id)
	}
	if _, exists := b.nodes[id]; exists {
		return b.defect("duplicate node id %q", id)
	}
	b.nodes[id] = step
	return nil
}

// AddReducer declares the merge rule for a state field. Fields without
// a declared reducer use Replace semantics.
func (b *Builder) AddReducer(field string, r Reducer) error {
	if field == "" {
		return b.defect("reducer field name cannot be empty")
	}
	if r == nil {
		return b.defect("reducer for field %q cannot be nil", field)
	}
	if _, exists := b.reducers[field]; exists {
		return b.defect("duplicate reducer for field %q", field)
	}
	b.reducers[field] = r
	return nil
}

// AddEdge declares a static transition from one node to another (or to
// End). Each node may have at most one outgoing edge, static or
// conditional. Node existence is checked at Compile so edges may be
// declared before their nodes.
func (b *Builder) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return b.defect("edge endpoints cannot be empty (from=%q to=%q)", from, to)
	}
	if from == End {
		return b.defect("edge cannot originate at the terminal marker")
	}
	if err := b.checkSingleRoute(from); err != nil {
		return err
	}
	b.edges[from] = to
	return nil
}

// AddConditionalEdge declares a data-dependent transition: after `from`
// executes, predicate is evaluated against the post-merge snapshot and
// the (normalized) result selects the next node from table. Table keys
// are normalized at registration; values may name nodes or End. A
// Default entry, if present, catches unmapped keys.
func (b *Builder) AddConditionalEdge(from string, predicate Predicate, table map[string]string) error {
	if from == "" {
		return b.defect("conditional edge source cannot be empty")
	}
	if from == End {
		return b.defect("conditional edge cannot originate at the terminal marker")
	}
	if predicate == nil {
		return b.defect("conditional edge from %q: predicate cannot be nil", from)
	}
	if len(table) == 0 {
		return b.defect("conditional edge from %q: routing table cannot be empty", from)
	}
	if err := b.checkSingleRoute(from); err != nil {
		return err
	}

	normalized := make(map[string]string, len(table))
	for key, to := range table {
		nk := normalizeKey(key)
		if nk == "" {
			return b.defect("conditional edge from %q: routing key cannot be empty", from)
		}
		if prev, dup := normalized[nk]; dup {
			return b.defect("conditional edge from %q: keys %q collide after normalization (targets %q, %q)", from, key, prev, to)
		}
		normalized[nk] = to
	}

	b.cond[from] = conditionalEdge{predicate: predicate, table: normalized}
	return nil
}

func (b *Builder) checkSingleRoute(from string) error {
	if _, exists := b.edges[from]; exists {
		return b.defect("node %q already has an outgoing edge", from)
	}
	if _, exists := b.cond[from]; exists {
		return b.defect("node %q already has an outgoing edge", from)
	}
	return nil
}

// Compile validates the accumulated definition and returns an immutable
// Graph. The returned Graph is safe to share across concurrent Invoke
// calls; further Builder mutation does not affect it.
//
// Compile fails with a *DefinitionError when:
//   - any builder method previously reported a defect (duplicate ids,
//     nil steps, colliding routing keys, multiple outgoing edges)
//   - the start node is unregistered
//   - an edge or routing-table entry references an unknown node
//   - a node reachable from start has no outgoing edge
//   - End is unreachable from start by static analysis over edges and
//     declared table targets
func (b *Builder) Compile(start string) (*Graph, error) {
	issues := append([]string(nil), b.defects...)

	if start == "" {
		issues = append(issues, "start node cannot be empty")
	} else if _, ok := b.nodes[start]; !ok {
		issues = append(issues, fmt.Sprintf("start node %q is not registered", start))
	}

	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			issues = append(issues, fmt.Sprintf("edge source %q is not a registered node", from))
		}
		if to != End {
			if _, ok := b.nodes[to]; !ok {
				issues = append(issues, fmt.Sprintf("edge %q -> %q targets an unknown node", from, to))
			}
		}
	}
	for from, cond := range b.cond {
		if _, ok := b.nodes[from]; !ok {
			issues = append(issues, fmt.Sprintf("conditional edge source %q is not a registered node", from))
		}
		for key, to := range cond.table {
			if to != End {
				if _, ok := b.nodes[to]; !ok {
					issues = append(issues, fmt.Sprintf("conditional edge %q [%s] targets unknown node %q", from, key, to))
				}
			}
		}
	}

	if len(issues) == 0 {
		issues = append(issues, b.checkReachability(start)...)
	}
	if len(issues) > 0 {
		return nil, &DefinitionError{Issues: issues}
	}

	g := &Graph{
		nodes:    make(map[string]StepFunc, len(b.nodes)),
		edges:    make(map[string]string, len(b.edges)),
		cond:     make(map[string]conditionalEdge, len(b.cond)),
		reducers: make(map[string]Reducer, len(b.reducers)),
		start:    start,
	}
	for id, step := range b.nodes {
		g.nodes[id] = step
	}
	for from, to := range b.edges {
		g.edges[from] = to
	}
	for from, cond := range b.cond {
		table := make(map[string]string, len(cond.table))
		for k, v := range cond.table {
			table[k] = v
		}
		g.cond[from] = conditionalEdge{predicate: cond.predicate, table: table}
	}
	for field, r := range b.reducers {
		g.reducers[field] = r
	}
	return g, nil
}

// checkReachability walks the static structure (edges plus every
// declared table target) from start. It reports nodes that dead-end
// without an outgoing edge and verifies End is reachable, so a compiled
// graph can never run out of routes at execution time.
func (b *Builder) checkReachability(start string) []string {
	var issues []string

	visited := map[string]bool{start: true}
	frontier := []string{start}
	endReachable := false

	for len(frontier) > 0 {
		node := frontier[0]
		frontier = frontier[1:]

		var targets []string
		if to, ok := b.edges[node]; ok {
			targets = append(targets, to)
		} else if cond, ok := b.cond[node]; ok {
			for _, to := range cond.table {
				targets = append(targets, to)
			}
		} else {
			issues = append(issues, fmt.Sprintf("node %q is reachable but has no outgoing edge", node))
			continue
		}

		for _, to := range targets {
			if to == End {
				endReachable = true
				continue
			}
			if !visited[to] {
				visited[to] = true
				frontier = append(frontier, to)
			}
		}
	}

	if !endReachable {
		issues = append(issues, fmt.Sprintf("terminal marker %q is unreachable from start node %q", End, start))
	}
	return issues
}
