// Package resilience limits how much of a shared resource concurrent work may
// hold at once.
//
// A Bulkhead is a counting semaphore with optional wait bounds and hooks. The
// dependency bootstrapper uses one to serialize package-manager runs that
// share an on-disk cache even when tasks execute in parallel:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "bootstrap", MaxConcurrent: 1})
//	err := bh.Execute(ctx, func() error { return install(ctx) })
package resilience
