package graph

import (
	"fmt"
	"reflect"
)

// State is the shared run state for one graph execution: a mapping of
// declared field names to values.
//
// Step functions receive a snapshot of the state and return a partial
// update containing only the fields they modify. The engine merges each
// partial update into the state using the reducer registered for the
// field (default: Replace).
//
// A State value handed to a step function or predicate is a snapshot;
// the engine's state store is the only writer during a run. Step
// functions must not mutate the snapshot they are given, including
// values reachable through it.
type State map[string]any

// Clone returns a copy of the state map. Field values are shared, not
// deep-copied; the contract that steps never mutate snapshot values is
// what keeps the shared values safe.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Reducer merges a field's existing value with an incoming value from a
// partial update and returns the merged result.
//
// A reducer must be deterministic and, for accumulating semantics,
// associative: merging ["a"] then ["b"] must equal merging ["a","b"]
// at once. Reducers receive old == nil when the field has no value yet.
//
// Built-in reducers: Replace (default), Append, Sum, MergeMap.
type Reducer func(old, incoming any) (any, error)

// Replace is the default reducer: the incoming value overwrites the old
// value. Fields with no registered reducer use Replace.
func Replace(_, incoming any) (any, error) {
	return incoming, nil
}

// Append concatenates slice values. If the old and incoming slices have
// the same type the result keeps that type; otherwise both are
// flattened into a []any. A non-slice value on either side fails the
// merge.
func Append(old, incoming any) (any, error) {
	if incoming == nil {
		return old, nil
	}
	if old == nil {
		return incoming, nil
	}

	ov := reflect.ValueOf(old)
	iv := reflect.ValueOf(incoming)
	if ov.Kind() != reflect.Slice {
		return nil, fmt.Errorf("append: old value %T is not a slice", old)
	}
	if iv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("append: incoming value %T is not a slice", incoming)
	}

	if ov.Type() == iv.Type() {
		merged := reflect.MakeSlice(ov.Type(), 0, ov.Len()+iv.Len())
		merged = reflect.AppendSlice(merged, ov)
		merged = reflect.AppendSlice(merged, iv)
		return merged.Interface(), nil
	}

	// Mixed slice types flatten to []any.
	merged := make([]any, 0, ov.Len()+iv.Len())
	for i := 0; i < ov.Len(); i++ {
		merged = append(merged, ov.Index(i).Interface())
	}
	for i := 0; i < iv.Len(); i++ {
		merged = append(merged, iv.Index(i).Interface())
	}
	return merged, nil
}

// Sum adds numeric values. Integer kinds sum to int; if either side is
// a float the result is float64. A non-numeric value on either side
// fails the merge, so accidentally routing text into a numeric field
// surfaces as a merge error instead of corrupting the total.
func Sum(old, incoming any) (any, error) {
	if old == nil {
		old = 0
	}
	if incoming == nil {
		return old, nil
	}

	oi, oIsInt := asInt64(old)
	ii, iIsInt := asInt64(incoming)
	if oIsInt && iIsInt {
		return int(oi + ii), nil
	}

	of, oOK := asFloat64(old)
	inf, iOK := asFloat64(incoming)
	if !oOK || !iOK {
		return nil, fmt.Errorf("sum: cannot add %T and %T", old, incoming)
	}
	return of + inf, nil
}

// MergeMap shallow-merges map values: keys from the incoming map
// overwrite keys in the old map. The result is always a map[string]any.
func MergeMap(old, incoming any) (any, error) {
	merged := make(map[string]any)

	if old != nil {
		om, err := asStringMap(old)
		if err != nil {
			return nil, fmt.Errorf("merge: old value: %w", err)
		}
		for k, v := range om {
			merged[k] = v
		}
	}
	if incoming != nil {
		im, err := asStringMap(incoming)
		if err != nil {
			return nil, fmt.Errorf("merge: incoming value: %w", err)
		}
		for k, v := range im {
			merged[k] = v
		}
	}
	return merged, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asStringMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case State:
		return m, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%T is not a string-keyed map", v)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

// stateStore owns the run state for a single execution. It is the only
// writer; everything handed out is a snapshot.
type stateStore struct {
	reducers map[string]Reducer
	state    State
}

func newStateStore(reducers map[string]Reducer, initial State) *stateStore {
	return &stateStore{
		reducers: reducers,
		state:    initial.Clone(),
	}
}

// Snapshot returns a copy of the current state for handing to step
// functions and predicates.
func (ss *stateStore) Snapshot() State {
	return ss.state.Clone()
}

// Apply merges one partial update atomically: every field in the update
// merges or none do. On a reducer failure the store keeps its previous
// state and returns a *MergeError naming the offending field and the
// value types involved.
func (ss *stateStore) Apply(update State) error {
	if len(update) == 0 {
		return nil
	}

	staged := make(State, len(update))
	for field, incoming := range update {
		reducer := ss.reducers[field]
		if reducer == nil {
			reducer = Replace
		}
		merged, err := reducer(ss.state[field], incoming)
		if err != nil {
			return &MergeError{
				Field:        field,
				OldType:      fmt.Sprintf("%T", ss.state[field]),
				IncomingType: fmt.Sprintf("%T", incoming),
				Err:          err,
			}
		}
		staged[field] = merged
	}

	for field, merged := range staged {
		ss.state[field] = merged
	}
	return nil
}
