// Package pipeline provides composable, pull-based stages over ordered
// sequences of work items.
//
// Pipelines are lazy: no work happens until values are pulled via Collect.
// Each stage pulls from the previous stage on demand, providing natural
// backpressure.
//
// # Operators
//
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value
//   - OrderedParallel: bounded worker pool that still yields results in
//     input order
//
// # Usage
//
//	src := pipeline.FromSlice(tasks)
//	results := pipeline.OrderedParallel(src, 4, runTask)
//	all, err := pipeline.Collect(ctx, pipeline.Tap(results, printProgress))
package pipeline
