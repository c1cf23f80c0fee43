package harness

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/harvester/executor"
	"github.com/kbukum/harvester/harvest"
)

// TaskStatus is the progress entry of one task.
type TaskStatus struct {
	Index    int    `json:"index"`
	Task     string `json:"task"`
	Kind     string `json:"kind"`
	State    string `json:"state"`
	Failure  string `json:"failure,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Harvest  string `json:"harvest,omitempty"`
	Records  int    `json:"records"`
	// DurationMS is the execution time of a finished task.
	DurationMS int64 `json:"duration_ms,omitempty"`
}

// Task states besides the terminal outcome statuses.
const (
	StatePending = "pending"
	StateRunning = "running"
)

// Snapshot is the /status view of a run.
type Snapshot struct {
	RunID     string         `json:"run_id"`
	Root      string         `json:"root"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   string         `json:"elapsed"`
	Total     int            `json:"total"`
	Done      int            `json:"done"`
	Running   int            `json:"running"`
	Counts    map[string]int `json:"counts"`
	Records   int            `json:"records"`
	Finished  bool           `json:"finished"`
	Tasks     []TaskStatus   `json:"tasks"`
}

// Tracker records per-task progress for concurrent readers.
type Tracker struct {
	mu        sync.RWMutex
	runID     string
	root      string
	startedAt time.Time
	tasks     []TaskStatus
	finished  bool
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin resets the tracker for a run over names.
func (t *Tracker) Begin(runID, root string, names, kinds []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID, t.root, t.startedAt, t.finished = runID, root, time.Now(), false
	t.tasks = make([]TaskStatus, len(names))
	for i, name := range names {
		t.tasks[i] = TaskStatus{Index: i + 1, Task: name, Kind: kinds[i], State: StatePending}
	}
}

// Running marks task i as in progress.
func (t *Tracker) Running(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < len(t.tasks) {
		t.tasks[i].State = StateRunning
	}
}

// Finish records the outcome and harvest of task i.
func (t *Tracker) Finish(i int, out *executor.Outcome, res *harvest.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= len(t.tasks) {
		return
	}
	ts := &t.tasks[i]
	ts.State = string(out.Status)
	if out.Failure != executor.FailureNone {
		ts.Failure = string(out.Failure)
	}
	if out.Ran() {
		ts.ExitCode = out.ExitCode
	}
	ts.DurationMS = out.Duration.Milliseconds()
	if res != nil {
		ts.Harvest = string(res.Status)
		ts.Records = res.Records()
	}
}

// End marks the run as finished.
func (t *Tracker) End() {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Snapshot{
		RunID:     t.runID,
		Root:      t.root,
		StartedAt: t.startedAt,
		Total:     len(t.tasks),
		Counts:    map[string]int{},
		Finished:  t.finished,
		Tasks:     append([]TaskStatus(nil), t.tasks...),
	}
	if !t.startedAt.IsZero() {
		s.Elapsed = time.Since(t.startedAt).Round(time.Second).String()
	}
	for _, ts := range t.tasks {
		switch ts.State {
		case StatePending:
		case StateRunning:
			s.Running++
		default:
			s.Done++
			s.Counts[ts.State]++
			s.Records += ts.Records
		}
	}
	return s
}

// StatusFunc adapts the tracker to the status endpoint.
func (t *Tracker) StatusFunc() func(context.Context) any {
	return func(context.Context) any { return t.Snapshot() }
}
