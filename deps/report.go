package deps

import (
	"time"
)

// Status is the result of one bootstrap.
type Status string

const (
	// StatusSkipped means there was nothing to resolve.
	StatusSkipped   Status = "skipped"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	// StatusCanceled means the run was interrupted before resolution finished.
	StatusCanceled Status = "canceled"
)

// Report describes one bootstrap run.
type Report struct {
	Task    string
	Status  Status
	Command string
	// ExitCode is -1 when the command did not exit on its own.
	ExitCode int
	// Output is the tail of combined stderr and stdout.
	Output   string
	Duration time.Duration
	// Err is a BOOTSTRAP_FAILURE AppError when Status is failed or timed_out.
	Err error
}

// Failed reports whether the bootstrap ran and did not succeed. A canceled
// bootstrap has not failed.
func (r *Report) Failed() bool {
	return r != nil && (r.Status == StatusFailed || r.Status == StatusTimedOut)
}
