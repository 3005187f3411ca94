package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestReplace(t *testing.T) {
	t.Run("overwrites old value", func(t *testing.T) {
		got, err := Replace("old", "new")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "new" {
			t.Errorf("expected %q, got %v", "new", got)
		}
	})

	t.Run("replaces with nil", func(t *testing.T) {
		got, err := Replace(42, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestAppend(t *testing.T) {
	t.Run("concatenates string slices", func(t *testing.T) {
		got, err := Append([]string{"a"}, []string{"b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"a", "b"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("nil old returns incoming", func(t *testing.T) {
		got, err := Append(nil, []string{"first"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"first"}) {
			t.Errorf("expected [first], got %v", got)
		}
	})

	t.Run("nil incoming keeps old", func(t *testing.T) {
		got, err := Append([]int{1, 2}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []int{1, 2}) {
			t.Errorf("expected [1 2], got %v", got)
		}
	})

	t.Run("mixed slice types flatten to []any", func(t *testing.T) {
		got, err := Append([]string{"a"}, []any{"b", 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []any{"a", "b", 3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("non-slice old fails", func(t *testing.T) {
		if _, err := Append("not a slice", []string{"a"}); err == nil {
			t.Fatal("expected error for non-slice old value")
		}
	})

	t.Run("non-slice incoming fails", func(t *testing.T) {
		if _, err := Append([]string{"a"}, 42); err == nil {
			t.Fatal("expected error for non-slice incoming value")
		}
	})

	t.Run("associative over successive merges", func(t *testing.T) {
		step1, _ := Append(nil, []string{"a"})
		step2, err := Append(step1, []string{"b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		atOnce, _ := Append(nil, []string{"a", "b"})
		if !reflect.DeepEqual(step2, atOnce) {
			t.Errorf("incremental %v differs from at-once %v", step2, atOnce)
		}
	})
}

func TestSum(t *testing.T) {
	t.Run("integers stay int", func(t *testing.T) {
		total := any(nil)
		for _, n := range []int{10, 20, 30} {
			var err error
			total, err = Sum(total, n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if total != 60 {
			t.Errorf("expected 60, got %v (%T)", total, total)
		}
	})

	t.Run("float promotes result", func(t *testing.T) {
		got, err := Sum(1, 2.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3.5 {
			t.Errorf("expected 3.5, got %v", got)
		}
	})

	t.Run("nil old treated as zero", func(t *testing.T) {
		got, err := Sum(nil, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %v", got)
		}
	})

	t.Run("non-numeric fails", func(t *testing.T) {
		if _, err := Sum(1, "two"); err == nil {
			t.Fatal("expected error adding string")
		}
	})
}

func TestMergeMap(t *testing.T) {
	t.Run("incoming keys overwrite", func(t *testing.T) {
		got, err := MergeMap(
			map[string]any{"a": 1, "b": 2},
			map[string]any{"b": 3, "c": 4},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]any{"a": 1, "b": 3, "c": 4}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("accepts State values", func(t *testing.T) {
		got, err := MergeMap(State{"a": 1}, State{"b": 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]any{"a": 1, "b": 2}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("non-map fails", func(t *testing.T) {
		if _, err := MergeMap(map[string]any{"a": 1}, "nope"); err == nil {
			t.Fatal("expected error merging non-map")
		}
	})
}

func TestStateClone(t *testing.T) {
	original := State{"a": 1, "b": "two"}
	clone := original.Clone()

	clone["a"] = 99
	if original["a"] != 1 {
		t.Errorf("mutating clone changed original: %v", original["a"])
	}
}

func TestStateStore(t *testing.T) {
	t.Run("snapshot isolation", func(t *testing.T) {
		ss := newStateStore(nil, State{"count": 1})
		snap := ss.Snapshot()
		snap["count"] = 999

		if got := ss.Snapshot()["count"]; got != 1 {
			t.Errorf("snapshot mutation leaked into store: %v", got)
		}
	})

	t.Run("apply uses registered reducers", func(t *testing.T) {
		ss := newStateStore(map[string]Reducer{"items": Append}, State{})

		if err := ss.Apply(State{"items": []string{"a"}, "name": "x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ss.Apply(State{"items": []string{"b"}, "name": "y"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap := ss.Snapshot()
		if !reflect.DeepEqual(snap["items"], []string{"a", "b"}) {
			t.Errorf("expected [a b], got %v", snap["items"])
		}
		if snap["name"] != "y" {
			t.Errorf("expected replace semantics for name, got %v", snap["name"])
		}
	})

	t.Run("failed merge leaves state untouched", func(t *testing.T) {
		ss := newStateStore(map[string]Reducer{"total": Sum}, State{"total": 10, "label": "before"})

		err := ss.Apply(State{"label": "after", "total": "not a number"})
		if err == nil {
			t.Fatal("expected merge error")
		}

		var mergeErr *MergeError
		if !errors.As(err, &mergeErr) {
			t.Fatalf("expected *MergeError, got %T", err)
		}
		if mergeErr.Field != "total" {
			t.Errorf("expected field total, got %q", mergeErr.Field)
		}
		if mergeErr.OldType != "int" || mergeErr.IncomingType != "string" {
			t.Errorf("unexpected types: old=%q incoming=%q", mergeErr.OldType, mergeErr.IncomingType)
		}

		snap := ss.Snapshot()
		if snap["label"] != "before" || snap["total"] != 10 {
			t.Errorf("partial update leaked: %v", snap)
		}
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		ss := newStateStore(nil, State{"a": 1})
		if err := ss.Apply(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ss.Snapshot()["a"]; got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})
}
