package executor

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/process"
	"github.com/kbukum/harvester/task"
)

// Executor runs task entry commands.
type Executor struct {
	cfg     Config
	runner  *process.Runner
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithMetrics records execute phase durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an Executor.
func New(cfg Config, opts ...Option) *Executor {
	cfg.ApplyDefaults()
	e := &Executor{
		cfg: cfg,
		runner: process.NewRunner(process.Config{
			GracePeriod:    cfg.GracePeriod,
			Timeout:        cfg.Timeout,
			MaxOutputBytes: cfg.MaxOutputBytes,
		}),
		log: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("executor")
	return e
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.cfg
}

// Execute runs t's entry command in its directory and returns the outcome.
// It never returns nil. Tasks that are not runnable get a skipped outcome.
func (e *Executor) Execute(ctx context.Context, t *task.Task) *Outcome {
	if !t.Runnable() {
		return NotRunnable(t)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanExecute)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTask, t.Name)

	cmd := t.Kind.RunCommand(t)
	cmd.Env = e.cfg.Env
	log := e.log.WithTask(t.Name, t.KindName())
	log.Debug("executing", logger.Fields("command", cmd.String()))

	res, err := e.runner.Run(ctx, cmd)
	out := e.classify(ctx, t, res, err)
	e.metrics.RecordPhase(ctx, out.Kind, "execute", out.Duration)

	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(out.Status))
	observability.SetSpanAttribute(ctx, observability.AttrExitCode, out.ExitCode)
	observability.SetSpanError(ctx, out.Err)

	fields := logger.Fields(
		logger.FieldStatus, string(out.Status),
		"failure", string(out.Failure),
		logger.FieldExitCode, out.ExitCode,
	)
	logger.MergeWithDuration(fields, out.Duration)
	if out.Err != nil {
		log.Warn("task did not succeed", logger.MergeWithError(fields, out.Err))
	} else {
		log.Info("task finished", fields)
	}
	return out
}

func (e *Executor) classify(ctx context.Context, t *task.Task, res *process.Result, err error) *Outcome {
	out := &Outcome{
		Task:     t.Name,
		Kind:     t.KindName(),
		Status:   StatusSucceeded,
		Failure:  FailureNone,
		ExitCode: -1,
	}
	if res != nil {
		out.ExitCode = res.ExitCode
		out.Stdout = string(res.Stdout)
		out.Stderr = string(res.Stderr)
		out.Truncated = res.StdoutTruncated || res.StderrTruncated
		out.Duration = res.Duration
	}

	switch {
	case err == nil:
	case stderrors.Is(err, process.ErrKilled) && ctx.Err() != nil:
		out.Status = StatusFailed
		out.Failure = FailureCanceled
		out.Err = err
	case stderrors.Is(err, process.ErrKilled):
		out.Status = StatusTimedOut
		out.Failure = FailureTimeout
		out.Err = errors.Timeout(t.Name, e.cfg.Timeout).WithCause(err)
	case stderrors.Is(err, process.ErrExit):
		out.Status = StatusFailed
		out.Failure = FailureNonZeroExit
		out.Err = errors.NonZeroExit(t.Name, out.ExitCode).WithCause(err).
			WithDetail("stderr_tail", tail(out.Stderr, 512))
	default:
		out.Status = StatusFailed
		out.Failure = FailureLaunch
		out.ExitCode = -1
		out.Err = errors.LaunchFailure(t.Name, err)
	}
	return out
}

// tail returns at most n trailing bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

