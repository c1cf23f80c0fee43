package export

import (
	"slices"

	"github.com/kbukum/harvester/aggregate"
)

// Table is a header plus aligned rows.
type Table struct {
	Columns []string
	Rows    [][]any
}

// FromAggregate lays out agg with the provenance column first. When a data
// column already uses the provenance name, the provenance column takes
// trailing underscores until it is unique.
func FromAggregate(agg *aggregate.Aggregate, provenance string) Table {
	name := provenance
	for slices.Contains(agg.Columns, name) {
		name += "_"
	}
	t := Table{Columns: append([]string{name}, agg.Columns...)}
	t.Rows = make([][]any, 0, agg.Len())
	for _, r := range agg.Rows {
		row := make([]any, 0, len(r.Values)+1)
		row = append(row, r.Task)
		row = append(row, r.Values...)
		t.Rows = append(t.Rows, row)
	}
	return t
}
