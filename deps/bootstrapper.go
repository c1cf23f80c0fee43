package deps

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/process"
	"github.com/kbukum/harvester/resilience"
	"github.com/kbukum/harvester/task"
)

// Bootstrapper runs dependency resolution for tasks.
type Bootstrapper struct {
	cfg      Config
	runner   *process.Runner
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
	metrics  *observability.Metrics
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bootstrapper) { b.log = l }
}

// WithMetrics records bootstrap phase durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bootstrapper) { b.metrics = m }
}

// New creates a Bootstrapper.
func New(cfg Config, opts ...Option) *Bootstrapper {
	cfg.ApplyDefaults()
	b := &Bootstrapper{
		cfg: cfg,
		runner: process.NewRunner(process.Config{
			GracePeriod:    cfg.GracePeriod,
			Timeout:        cfg.Timeout,
			MaxOutputBytes: cfg.MaxOutputBytes,
		}),
		log: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithComponent("deps")
	b.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "bootstrap",
		MaxConcurrent: cfg.Concurrency,
		OnAcquire: func(name string, waited time.Duration) {
			if waited > time.Second {
				b.log.Debug("waited for bootstrap slot", logger.DurationFields("acquire", waited))
			}
		},
	})
	return b
}

// Policy returns the configured failure policy.
func (b *Bootstrapper) Policy() Policy {
	return b.cfg.Policy
}

// ShouldExecute reports whether a task may run after this bootstrap report.
func (b *Bootstrapper) ShouldExecute(r *Report) bool {
	return !(r.Failed() && b.cfg.Policy == PolicyStrict)
}

// Bootstrap resolves dependencies for t. It never returns nil. Failures are
// carried in the report; a task without a manifest gets a skipped report.
func (b *Bootstrapper) Bootstrap(ctx context.Context, t *task.Task) *Report {
	report := &Report{Task: t.Name, Status: StatusSkipped, ExitCode: -1}
	if b.cfg.Disabled || !t.Runnable() {
		return report
	}
	cmd, ok := t.Kind.BootstrapCommand(t)
	if !ok {
		return report
	}
	report.Command = cmd.String()

	ctx, span := observability.StartSpan(ctx, observability.SpanBootstrap)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTask, t.Name)

	log := b.log.WithTask(t.Name, t.KindName())
	start := time.Now()

	var res *process.Result
	err := b.bulkhead.Execute(ctx, func() error {
		log.Debug("resolving dependencies", logger.Fields("command", report.Command))
		var runErr error
		res, runErr = b.runner.Run(ctx, cmd)
		return runErr
	})
	report.Duration = time.Since(start)
	b.metrics.RecordPhase(ctx, t.KindName(), "bootstrap", report.Duration)

	if res != nil {
		report.ExitCode = res.ExitCode
		report.Output = combinedOutput(res)
	}

	switch {
	case err == nil:
		report.Status = StatusSucceeded
	case ctx.Err() != nil:
		report.Status = StatusCanceled
		report.Err = context.Cause(ctx)
	case stderrors.Is(err, process.ErrKilled):
		report.Status = StatusTimedOut
		report.Err = errors.BootstrapFailure(t.Name, err).
			WithDetail("reason", fmt.Sprintf("timed out after %s", b.cfg.Timeout))
	default:
		report.Status = StatusFailed
		report.Err = errors.BootstrapFailure(t.Name, err).WithDetail("exit_code", report.ExitCode)
	}
	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(report.Status))
	observability.SetSpanError(ctx, report.Err)

	fields := logger.Fields(logger.FieldStatus, string(report.Status), logger.FieldExitCode, report.ExitCode)
	logger.MergeWithDuration(fields, report.Duration)
	switch {
	case report.Failed():
		log.Warn("dependency bootstrap failed", logger.MergeWithError(fields, report.Err))
	case report.Status == StatusCanceled:
		log.Info("dependency bootstrap canceled", fields)
	default:
		log.Info("dependencies resolved", fields)
	}
	return report
}

func combinedOutput(res *process.Result) string {
	var sb strings.Builder
	sb.Write(res.Stderr)
	if len(res.Stderr) > 0 && len(res.Stdout) > 0 {
		sb.WriteString("\n")
	}
	sb.Write(res.Stdout)
	return sb.String()
}
