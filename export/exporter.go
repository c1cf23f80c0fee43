package export

import (
	"context"
	"fmt"

	"github.com/kbukum/harvester/aggregate"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
)

// Report describes a written artifact.
type Report struct {
	// Path is where the artifact was written.
	Path   string
	Format string
	// Fallback is set when the primary write failed and Path is the CSV
	// fallback.
	Fallback bool
	// PrimaryErr is why the primary write failed.
	PrimaryErr error
	Rows       int
	Columns    int
}

// Exporter writes tables in the primary format with a CSV fallback.
type Exporter struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Exporter) { e.log = l }
}

// WithMetrics counts export attempts.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

// New creates an Exporter.
func New(cfg Config, opts ...Option) *Exporter {
	cfg.ApplyDefaults()
	e := &Exporter{cfg: cfg, log: logger.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("export")
	return e
}

// Config returns the effective configuration.
func (e *Exporter) Config() Config {
	return e.cfg
}

// Export writes agg to path, or to the configured path when path is empty.
// An empty aggregate writes nothing and returns a nil report. A failed
// primary write falls back to CSV next to path, then to the working
// directory unless a fallback path is configured. When every attempt fails
// the error is a fatal EXPORT_FAILURE.
func (e *Exporter) Export(ctx context.Context, agg *aggregate.Aggregate, path string) (*Report, error) {
	if agg.Empty() {
		e.log.Info("no data collected, nothing exported")
		return nil, nil
	}
	return e.ExportTable(ctx, FromAggregate(agg, e.cfg.ProvenanceColumn), path)
}

// ExportTable writes t to path with the same format and fallback rules as
// Export. A table with no columns writes nothing.
func (e *Exporter) ExportTable(ctx context.Context, t Table, path string) (*Report, error) {
	if len(t.Columns) == 0 {
		return nil, nil
	}
	if path == "" {
		path = e.cfg.Path
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanExport)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPath, path)

	report := &Report{Path: path, Format: e.cfg.Format, Rows: len(t.Rows), Columns: len(t.Columns)}

	primaryErr := e.write(e.cfg.Format, path, t)
	e.metrics.RecordExport(ctx, e.cfg.Format, primaryErr)
	if primaryErr == nil {
		e.log.Info("export written", logger.Fields(logger.FieldPath, path, logger.FieldRecords, len(t.Rows), "format", e.cfg.Format))
		return report, nil
	}

	if e.cfg.Format == FormatCSV {
		err := errors.ExportFailure(path, primaryErr)
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	fallback := e.cfg.FallbackFor(path)
	e.log.Warn("primary export failed, writing CSV fallback", logger.Fields(
		logger.FieldPath, path,
		"fallback", fallback,
		logger.FieldError, primaryErr.Error(),
	))
	fallbackErr := writeCSV(fallback, t)
	e.metrics.RecordExport(ctx, FormatCSV, fallbackErr)
	if fallbackErr != nil {
		if local, ok := e.cfg.LocalFallbackFor(path); ok {
			e.log.Warn("CSV fallback failed, writing to working directory", logger.Fields(
				logger.FieldPath, fallback,
				"fallback", local,
				logger.FieldError, fallbackErr.Error(),
			))
			fallback, fallbackErr = local, writeCSV(local, t)
			e.metrics.RecordExport(ctx, FormatCSV, fallbackErr)
		}
	}
	if fallbackErr != nil {
		err := errors.ExportFailure(path, fallbackErr).
			WithDetail("primary_error", primaryErr.Error()).
			WithDetail("fallback_path", fallback)
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	report.Path = fallback
	report.Format = FormatCSV
	report.Fallback = true
	report.PrimaryErr = primaryErr
	e.log.Info("fallback export written", logger.Fields(logger.FieldPath, fallback, logger.FieldRecords, len(t.Rows)))
	return report, nil
}

func (e *Exporter) write(format, path string, t Table) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(path, e.cfg.Sheet, t)
	case FormatCSV:
		return writeCSV(path, t)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
