// Package executor runs a task's entry command under a wall-clock budget
// and turns the result into an Outcome.
//
// Nothing that happens to a single task is returned as an error. Launch
// failures, non-zero exits and timeouts are all recorded on the Outcome so
// the run can continue with the next task.
package executor
