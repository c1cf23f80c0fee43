// Package deps resolves a task's runtime dependencies before it runs.
//
// Bootstrap runs the kind's resolution command (bundle update, pip install)
// in the task directory when the dependency manifest is present. Runs share
// runtime caches, so they pass through a bulkhead that defaults to one slot
// even when tasks execute concurrently. The Policy decides whether a failed
// bootstrap blocks execution.
package deps
