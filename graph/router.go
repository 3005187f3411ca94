package graph

import "strings"

// normalizeKey canonicalizes a routing key at the router boundary.
// Predicates frequently echo model output ("FINISH", " finish\n"), so
// keys are compared case-insensitively after trimming whitespace.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// route resolves a conditional edge against a post-merge snapshot.
// Resolution order: exact (normalized) table entry, then the declared
// Default entry. An unresolved key is a *RoutingError; it never falls
// through to an arbitrary node.
func route(node string, cond conditionalEdge, snap State, path []string) (string, error) {
	key := normalizeKey(cond.predicate(snap))
	if to, ok := cond.table[key]; ok {
		return to, nil
	}
	if to, ok := cond.table[Default]; ok {
		return to, nil
	}
	return "", &RoutingError{Node: node, Key: key, Path: clonePath(path)}
}

func clonePath(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}
