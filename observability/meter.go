package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/harvester/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// The caller shuts it down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the run instruments. A nil *Metrics records nothing.
type Metrics struct {
	tasksTotal    metric.Int64Counter
	tasksActive   metric.Int64UpDownCounter
	phaseDuration metric.Float64Histogram
	harvestTotal  metric.Int64Counter
	recordsTotal  metric.Int64Counter
	exportTotal   metric.Int64Counter
}

// NewMetrics creates the run instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	tasksTotal, err := meter.Int64Counter("harvester.tasks.total",
		metric.WithDescription("Finished tasks by kind, status and failure kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.tasks.total counter: %w", err)
	}

	tasksActive, err := meter.Int64UpDownCounter("harvester.tasks.active",
		metric.WithDescription("Tasks currently in an execution slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.tasks.active gauge: %w", err)
	}

	phaseDuration, err := meter.Float64Histogram("harvester.phase.duration",
		metric.WithDescription("Duration of bootstrap, execute and harvest phases"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.phase.duration histogram: %w", err)
	}

	harvestTotal, err := meter.Int64Counter("harvester.harvest.total",
		metric.WithDescription("Harvest attempts by result status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.harvest.total counter: %w", err)
	}

	recordsTotal, err := meter.Int64Counter("harvester.records.total",
		metric.WithDescription("Records harvested from task stores"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.records.total counter: %w", err)
	}

	exportTotal, err := meter.Int64Counter("harvester.export.total",
		metric.WithDescription("Export attempts by format and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating harvester.export.total counter: %w", err)
	}

	return &Metrics{
		tasksTotal:    tasksTotal,
		tasksActive:   tasksActive,
		phaseDuration: phaseDuration,
		harvestTotal:  harvestTotal,
		recordsTotal:  recordsTotal,
		exportTotal:   exportTotal,
	}, nil
}

// TaskStarted marks a task as occupying an execution slot.
func (m *Metrics) TaskStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.tasksActive.Add(ctx, 1)
}

// TaskFinished releases the slot and counts the outcome.
func (m *Metrics) TaskFinished(ctx context.Context, kind, status, failure string) {
	if m == nil {
		return
	}
	m.tasksActive.Add(ctx, -1)
	m.tasksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
		attribute.String("failure", failure),
	))
}

// RecordPhase records how long one phase of a task took.
func (m *Metrics) RecordPhase(ctx context.Context, kind, phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("phase", phase),
	))
}

// RecordHarvest counts a harvest attempt and the records it produced.
func (m *Metrics) RecordHarvest(ctx context.Context, kind, status string, records int) {
	if m == nil {
		return
	}
	m.harvestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if records > 0 {
		m.recordsTotal.Add(ctx, int64(records), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordExport counts an export attempt in the given format.
func (m *Metrics) RecordExport(ctx context.Context, format string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exportTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
}
