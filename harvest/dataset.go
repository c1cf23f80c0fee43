package harvest

import "time"

// Status is the result of one harvest attempt.
type Status string

const (
	StatusHarvested Status = "harvested"
	// StatusNoStore means the task left no store file.
	StatusNoStore      Status = "no_store"
	StatusEmpty        Status = "empty"
	StatusMissingTable Status = "missing_table"
	// StatusUnreadable covers stores that cannot be opened or queried.
	StatusUnreadable Status = "unreadable"
	// StatusSkipped means the outcome ruled out harvesting.
	StatusSkipped Status = "skipped"
)

// Dataset is the records of one task, in store order.
type Dataset struct {
	// Task is the provenance of every row.
	Task string
	// Columns are the store's columns, in declared order.
	Columns []string
	// Rows hold one value per column: int64, float64, string, bool,
	// time.Time or nil.
	Rows [][]any
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Result is the outcome of harvesting one task.
type Result struct {
	Task    string
	Status  Status
	Dataset *Dataset
	// Diagnostic explains a status other than harvested or no_store.
	Diagnostic string
	// Err is a HARVEST_FAILURE AppError for unreadable stores.
	Err error
}

// Records returns the number of harvested records.
func (r *Result) Records() int {
	if r == nil {
		return 0
	}
	return r.Dataset.Len()
}

// normalize maps driver values onto the scalar set a Dataset allows.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, bool, time.Time:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return x
	}
}
