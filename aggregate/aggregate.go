// Package aggregate merges per-task datasets into one table.
package aggregate

import (
	"github.com/kbukum/harvester/harvest"
)

// Row is one aggregated record.
type Row struct {
	// Task is the dataset the row came from.
	Task string
	// Values has one slot per aggregate column, nil where the source
	// dataset lacks the column.
	Values []any
}

// Aggregate is the merged result of a run.
type Aggregate struct {
	// Columns is the union of dataset columns in first-seen order.
	Columns []string
	Rows    []Row
	// Tasks lists the contributing tasks in merge order.
	Tasks []string
}

// Empty reports whether no dataset contributed.
func (a *Aggregate) Empty() bool {
	return a == nil || len(a.Tasks) == 0
}

// Len returns the number of rows.
func (a *Aggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Rows)
}

// Merge combines datasets in the given order. Nil and zero-row datasets are
// ignored, and a task contributes at most once: a later dataset with an
// already merged task name is dropped.
func Merge(datasets []*harvest.Dataset) *Aggregate {
	agg := &Aggregate{}
	index := map[string]int{}
	seenTask := map[string]bool{}

	var kept []*harvest.Dataset
	for _, ds := range datasets {
		if ds.Len() == 0 || seenTask[ds.Task] {
			continue
		}
		seenTask[ds.Task] = true
		kept = append(kept, ds)
		agg.Tasks = append(agg.Tasks, ds.Task)
		for _, c := range ds.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(agg.Columns)
				agg.Columns = append(agg.Columns, c)
			}
		}
	}

	for _, ds := range kept {
		positions := make([]int, len(ds.Columns))
		for i, c := range ds.Columns {
			positions[i] = index[c]
		}
		for _, src := range ds.Rows {
			values := make([]any, len(agg.Columns))
			for i, v := range src {
				if i < len(positions) {
					values[positions[i]] = v
				}
			}
			agg.Rows = append(agg.Rows, Row{Task: ds.Task, Values: values})
		}
	}
	return agg
}
