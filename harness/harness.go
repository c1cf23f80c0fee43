package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/harvester/aggregate"
	"github.com/kbukum/harvester/deps"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/executor"
	"github.com/kbukum/harvester/export"
	"github.com/kbukum/harvester/harvest"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/pipeline"
	"github.com/kbukum/harvester/storage"
	"github.com/kbukum/harvester/task"
)

// TaskResult is everything recorded for one task in a run.
type TaskResult struct {
	// Index is the 1-based position in the run.
	Index   int
	Task    *task.Task
	Outcome *executor.Outcome
	Harvest *harvest.Result
}

// Report is the result of a complete run.
type Report struct {
	RunID     string
	Results   []*TaskResult
	Aggregate *aggregate.Aggregate
	// Export is nil when no data was collected.
	Export     *export.Report
	Publish    *storage.Receipt
	PublishErr error
	Summary    *Summary
}

// Harness drives discovery, per-task execution and export for one run.
type Harness struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	kinds        []task.Kind
	bootstrapper *deps.Bootstrapper
	executor     *executor.Executor
	harvester    *harvest.Harvester
	exporter     *export.Exporter
	publisher    *storage.Publisher
	claims       *executor.Claims
	tracker      *Tracker
	progress     io.Writer
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the base logger handed to every stage.
func WithLogger(l *logger.Logger) Option {
	return func(h *Harness) { h.log = l }
}

// WithMetrics records task and phase metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

// WithProgress sets where per-task progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(h *Harness) { h.progress = w }
}

// WithPublisher uploads the exported artifact after a run. The publisher
// must already be started.
func WithPublisher(p *storage.Publisher) Option {
	return func(h *Harness) { h.publisher = p }
}

// WithTracker shares a progress tracker, for example with the status server.
func WithTracker(t *Tracker) Option {
	return func(h *Harness) { h.tracker = t }
}

// New creates a Harness. cfg should already be defaulted and validated.
func New(cfg Config, opts ...Option) *Harness {
	h := &Harness{
		cfg:      cfg,
		log:      logger.GetGlobalLogger(),
		progress: io.Discard,
		claims:   executor.NewClaims(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracker == nil {
		h.tracker = NewTracker()
	}

	base := h.log
	h.kinds = cfg.Kinds.Kinds()
	h.bootstrapper = deps.New(cfg.Bootstrap, deps.WithLogger(base), deps.WithMetrics(h.metrics))
	h.executor = executor.New(cfg.Executor, executor.WithLogger(base), executor.WithMetrics(h.metrics))
	h.harvester = harvest.New(cfg.Store, harvest.WithLogger(base), harvest.WithMetrics(h.metrics))
	h.exporter = export.New(cfg.Output, export.WithLogger(base), export.WithMetrics(h.metrics))
	h.log = base.WithComponent("harness")
	return h
}

// Tracker returns the progress tracker of the current or last run.
func (h *Harness) Tracker() *Tracker {
	return h.tracker
}

// Run discovers the tasks under the configured root and processes each one:
// bootstrap, execute, harvest. It then merges the harvested datasets,
// exports them and publishes the artifact.
//
// Only a discovery failure or a fatal export failure is returned as an
// error; every per-task problem is recorded in that task's outcome. When ctx
// is canceled the tasks not yet reached get a canceled outcome and the data
// harvested so far is still exported.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := h.log.WithFields(logger.Fields(logger.FieldRunID, runID))

	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)

	tasks, err := task.Scan(ctx, h.cfg.Root, task.ScanOptions{Kinds: h.kinds, Workers: h.cfg.DiscoveryWorkers})
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Error("task discovery failed", logger.ErrorFields("discover", err))
		return nil, err
	}
	tasks = h.selectTasks(log, tasks)

	names, kinds := make([]string, len(tasks)), make([]string, len(tasks))
	for i, t := range tasks {
		names[i], kinds[i] = t.Name, t.KindName()
	}
	h.tracker.Begin(runID, h.cfg.Root, names, kinds)
	defer h.tracker.End()

	log.Info("run started", logger.Fields(
		FieldRoot, h.cfg.Root,
		"tasks", len(tasks),
		"concurrency", h.cfg.Concurrency,
		"policy", string(h.bootstrapper.Policy()),
	))

	indexes := make([]int, len(tasks))
	for i := range indexes {
		indexes[i] = i
	}
	// The pool itself is never canceled so that every task gets exactly one
	// result; each task checks the run context before it starts. Progress
	// lines follow task order whatever the concurrency.
	pool := pipeline.OrderedParallel(pipeline.FromSlice(indexes), h.cfg.Concurrency,
		func(_ context.Context, i int) (*TaskResult, error) {
			return h.runTask(ctx, log, i, tasks[i]), nil
		})
	progress := pipeline.Tap(pool, func(_ context.Context, r *TaskResult) error {
		h.writeProgress(ProgressLine(r.Index, len(tasks), r))
		return nil
	})
	results, err := pipeline.Collect(context.WithoutCancel(ctx), progress)
	if err != nil {
		return nil, errors.Internal(err)
	}

	report := &Report{RunID: runID, Results: results}
	datasets := make([]*harvest.Dataset, 0, len(results))
	for _, r := range results {
		if r.Harvest.Status == harvest.StatusHarvested {
			datasets = append(datasets, r.Harvest.Dataset)
		}
	}
	report.Aggregate = aggregate.Merge(datasets)

	// Export and publish finish even when the run was interrupted.
	finishCtx := context.WithoutCancel(ctx)
	report.Export, err = h.exporter.Export(finishCtx, report.Aggregate, "")
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Error("export failed", logger.ErrorFields("export", err))
		return report, err
	}
	if report.Export != nil && h.publisher != nil {
		report.Publish, report.PublishErr = h.publisher.Publish(finishCtx, runID, report.Export.Path)
	}

	report.Summary = Summarize(report, time.Since(start))
	report.Summary.Interrupted = ctx.Err() != nil
	log.Info("run finished", report.Summary.Fields())
	return report, nil
}

// selectTasks applies the --only filter and then the limit. The limit counts
// runnable tasks; directories without an entry script before the cut-off
// are kept so they are reported as skipped.
func (h *Harness) selectTasks(log *logger.Logger, tasks []*task.Task) []*task.Task {
	if len(h.cfg.Only) > 0 {
		want := make(map[string]bool, len(h.cfg.Only))
		for _, name := range h.cfg.Only {
			want[name] = false
		}
		selected := tasks[:0:0]
		for _, t := range tasks {
			if _, ok := want[t.Name]; ok {
				want[t.Name] = true
				selected = append(selected, t)
			}
		}
		for _, name := range h.cfg.Only {
			if !want[name] {
				log.Warn("requested task not found", logger.Fields(logger.FieldTask, name))
			}
		}
		tasks = selected
	}

	if h.cfg.Limit > 0 {
		runnable := 0
		for i, t := range tasks {
			if !t.Runnable() {
				continue
			}
			runnable++
			if runnable == h.cfg.Limit {
				return tasks[:i+1]
			}
		}
	}
	return tasks
}

func (h *Harness) runTask(ctx context.Context, log *logger.Logger, i int, t *task.Task) *TaskResult {
	res := &TaskResult{Index: i + 1, Task: t}
	h.tracker.Running(i)

	ctx, span := observability.StartSpan(ctx, observability.SpanTask)
	observability.SetSpanAttribute(ctx, observability.AttrTask, t.Name)
	observability.SetSpanAttribute(ctx, observability.AttrKind, t.KindName())
	h.metrics.TaskStarted(ctx)

	res.Outcome = h.execute(ctx, t)
	res.Harvest = h.harvester.Harvest(context.WithoutCancel(ctx), t, res.Outcome)

	out := res.Outcome
	h.metrics.TaskFinished(ctx, out.Kind, string(out.Status), string(out.Failure))
	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(out.Status))
	observability.SetSpanAttribute(ctx, observability.AttrFailure, string(out.Failure))
	observability.SetSpanAttribute(ctx, observability.AttrRecords, res.Harvest.Records())
	observability.SetSpanError(ctx, out.Err)
	span.End()

	h.tracker.Finish(i, out, res.Harvest)

	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldStatus, string(out.Status),
		logger.FieldRecords, res.Harvest.Records(),
		"harvest", string(res.Harvest.Status),
	), out.Duration)
	if out.Failure != executor.FailureNone {
		fields["failure"] = string(out.Failure)
	}
	if out.Reason != "" {
		fields["reason"] = out.Reason
	}
	log.WithTask(t.Name, t.KindName()).Debug("task done", fields)
	return res
}

// execute produces the outcome of t: claim its directory, bootstrap its
// dependencies, then run it unless the policy forbids it.
func (h *Harness) execute(ctx context.Context, t *task.Task) *executor.Outcome {
	if !t.Runnable() {
		return executor.NotRunnable(t)
	}
	if ctx.Err() != nil {
		return executor.Canceled(t, context.Cause(ctx))
	}

	release, err := h.claims.Claim(ctx, t.Dir)
	if err != nil {
		if ctx.Err() != nil {
			return executor.Canceled(t, context.Cause(ctx))
		}
		return &executor.Outcome{
			Task:     t.Name,
			Kind:     t.KindName(),
			Status:   executor.StatusFailed,
			Failure:  executor.FailureLaunch,
			ExitCode: -1,
			Err:      errors.LaunchFailure(t.Name, err),
		}
	}
	defer release()

	report := h.bootstrapper.Bootstrap(ctx, t)
	if ctx.Err() != nil {
		out := executor.Canceled(t, context.Cause(ctx))
		out.Bootstrap = report
		return out
	}
	if !h.bootstrapper.ShouldExecute(report) {
		return executor.BootstrapBlocked(t, report)
	}
	out := h.executor.Execute(ctx, t)
	out.Bootstrap = report
	return out
}

func (h *Harness) writeProgress(line string) {
	fmt.Fprintln(h.progress, line)
}

// ProgressLine formats the line printed when a task finishes:
//
//	[2/14] sydney: timed_out timeout (0 records)
func ProgressLine(i, n int, r *TaskResult) string {
	status := string(r.Outcome.Status)
	if r.Outcome.Failure != executor.FailureNone {
		status += " " + string(r.Outcome.Failure)
	}
	return fmt.Sprintf("[%d/%d] %s: %s (%d records)", i, n, r.Task.Name, status, r.Harvest.Records())
}

// FieldRoot is the log field for the task root.
const FieldRoot = "root"
