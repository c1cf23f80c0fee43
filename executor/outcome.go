package executor

import (
	"time"

	"github.com/kbukum/harvester/deps"
	"github.com/kbukum/harvester/task"
)

// Status is the terminal state of a task in a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	// StatusSkipped means the task was not run.
	StatusSkipped Status = "skipped"
)

// FailureKind says why a task did not succeed.
type FailureKind string

const (
	FailureNone        FailureKind = "none"
	FailureLaunch      FailureKind = "launch"
	FailureNonZeroExit FailureKind = "non_zero_exit"
	FailureTimeout     FailureKind = "timeout"
	FailureBootstrap   FailureKind = "bootstrap"
	// FailureCanceled means the run itself was interrupted mid-task.
	FailureCanceled FailureKind = "canceled"
)

// Outcome is the single result recorded for a task in a run.
type Outcome struct {
	Task     string
	Kind     string
	Status   Status
	Failure  FailureKind
	ExitCode int
	// Stdout and Stderr hold the captured tail of each stream.
	Stdout    string
	Stderr    string
	Truncated bool
	Duration  time.Duration
	Bootstrap *deps.Report
	// Reason explains a skip.
	Reason string
	// Err is the AppError behind a failure, nil on success.
	Err error
}

// Ran reports whether the entry command was started.
func (o *Outcome) Ran() bool {
	return o.Status != StatusSkipped && o.Failure != FailureLaunch
}

// Harvestable reports whether the task's store should be read. Tasks that
// never started, or that were interrupted by the run ending, are not read.
func (o *Outcome) Harvestable() bool {
	return o.Ran() && o.Failure != FailureCanceled
}

// NotRunnable returns the outcome for a task without a usable entry script.
func NotRunnable(t *task.Task) *Outcome {
	return &Outcome{
		Task:     t.Name,
		Kind:     t.KindName(),
		Status:   StatusSkipped,
		Failure:  FailureNone,
		ExitCode: -1,
		Reason:   "no entry script",
	}
}

// BootstrapBlocked returns the outcome for a task whose failed bootstrap
// prevents execution under the strict policy.
func BootstrapBlocked(t *task.Task, report *deps.Report) *Outcome {
	return &Outcome{
		Task:      t.Name,
		Kind:      t.KindName(),
		Status:    StatusSkipped,
		Failure:   FailureBootstrap,
		ExitCode:  -1,
		Bootstrap: report,
		Reason:    "dependency bootstrap " + string(report.Status),
		Err:       report.Err,
	}
}

// Canceled returns the outcome for a task the run never reached because it
// was interrupted.
func Canceled(t *task.Task, cause error) *Outcome {
	return &Outcome{
		Task:     t.Name,
		Kind:     t.KindName(),
		Status:   StatusSkipped,
		Failure:  FailureCanceled,
		ExitCode: -1,
		Reason:   "run canceled",
		Err:      cause,
	}
}
