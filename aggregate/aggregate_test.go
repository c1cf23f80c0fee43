package aggregate

import (
	"reflect"
	"testing"

	"github.com/kbukum/harvester/harvest"
)

func TestMergeColumnUnion(t *testing.T) {
	datasets := []*harvest.Dataset{
		{Task: "alpha", Columns: []string{"a", "b"}, Rows: [][]any{{int64(1), "x"}, {int64(2), "y"}}},
		nil,
		{Task: "beta", Columns: []string{"c", "a"}, Rows: [][]any{{true, int64(3)}}},
		{Task: "gamma", Columns: []string{"d"}},
	}
	agg := Merge(datasets)

	if !reflect.DeepEqual(agg.Columns, []string{"a", "b", "c"}) {
		t.Fatalf("columns = %v", agg.Columns)
	}
	if !reflect.DeepEqual(agg.Tasks, []string{"alpha", "beta"}) {
		t.Errorf("tasks = %v", agg.Tasks)
	}
	want := []Row{
		{Task: "alpha", Values: []any{int64(1), "x", nil}},
		{Task: "alpha", Values: []any{int64(2), "y", nil}},
		{Task: "beta", Values: []any{int64(3), nil, true}},
	}
	if !reflect.DeepEqual(agg.Rows, want) {
		t.Errorf("rows = %#v", agg.Rows)
	}
	if agg.Len() != 3 || agg.Empty() {
		t.Errorf("unexpected size %d empty=%v", agg.Len(), agg.Empty())
	}
}

func TestMergeDuplicateTaskDropped(t *testing.T) {
	agg := Merge([]*harvest.Dataset{
		{Task: "alpha", Columns: []string{"a"}, Rows: [][]any{{int64(1)}}},
		{Task: "alpha", Columns: []string{"z"}, Rows: [][]any{{int64(9)}}},
	})
	if agg.Len() != 1 || len(agg.Columns) != 1 || agg.Columns[0] != "a" {
		t.Errorf("expected the first alpha dataset only, got %v %v", agg.Columns, agg.Rows)
	}
}

func TestMergeNothing(t *testing.T) {
	for _, in := range [][]*harvest.Dataset{nil, {nil}, {{Task: "empty", Columns: []string{"a"}}}} {
		agg := Merge(in)
		if !agg.Empty() || agg.Len() != 0 || len(agg.Columns) != 0 {
			t.Errorf("expected empty aggregate for %v, got %+v", in, agg)
		}
	}
	var nilAgg *Aggregate
	if !nilAgg.Empty() || nilAgg.Len() != 0 {
		t.Error("nil aggregate is empty")
	}
}

func TestMergeEveryRowAligned(t *testing.T) {
	agg := Merge([]*harvest.Dataset{
		{Task: "a", Columns: []string{"x"}, Rows: [][]any{{1}}},
		{Task: "b", Columns: []string{"y", "z"}, Rows: [][]any{{2, 3}}},
		{Task: "c", Columns: []string{"z", "w", "x"}, Rows: [][]any{{4, 5, 6}}},
	})
	for _, r := range agg.Rows {
		if len(r.Values) != len(agg.Columns) {
			t.Fatalf("row %v has %d values for %d columns", r, len(r.Values), len(agg.Columns))
		}
	}
	if got := agg.Rows[2].Values; !reflect.DeepEqual(got, []any{6, nil, 4, 5}) {
		t.Errorf("row c = %v, columns %v", got, agg.Columns)
	}
}
