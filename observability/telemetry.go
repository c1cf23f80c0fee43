package observability

import (
	"context"
	"errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/harvester/component"
	"github.com/kbukum/harvester/logger"
)

// Telemetry is the lifecycle component owning the trace and meter providers.
type Telemetry struct {
	cfg Config
	svc ServiceInfo
	log *logger.Logger

	mu      sync.Mutex
	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	once    sync.Once
	metrics *Metrics
}

var _ component.Component = (*Telemetry)(nil)

// NewTelemetry creates the telemetry component.
func NewTelemetry(cfg Config, svc ServiceInfo, log *logger.Logger) *Telemetry {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Telemetry{cfg: cfg, svc: svc, log: log.WithComponent("telemetry")}
}

func (t *Telemetry) Name() string { return "telemetry" }

// Start installs the OTLP providers when telemetry is enabled.
func (t *Telemetry) Start(ctx context.Context) error {
	if !t.cfg.Enabled {
		t.log.Debug("telemetry disabled")
		return nil
	}

	tp, err := InitTracer(ctx, t.cfg.TracerConfig(t.svc))
	if err != nil {
		return err
	}
	mp, err := InitMeter(ctx, t.cfg.MeterConfig(t.svc))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}

	t.mu.Lock()
	t.tp, t.mp = tp, mp
	t.mu.Unlock()
	return nil
}

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	t.mu.Lock()
	tp, mp := t.tp, t.mp
	t.tp, t.mp = nil, nil
	t.mu.Unlock()

	var errs []error
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (t *Telemetry) Health(_ context.Context) component.Health {
	msg := "disabled"
	if t.cfg.Enabled {
		msg = "exporting to " + t.cfg.Endpoint
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe returns a summary for the startup display.
func (t *Telemetry) Describe() component.Description {
	details := "disabled"
	if t.cfg.Enabled {
		details = t.cfg.Endpoint
	}
	return component.Description{Name: "Telemetry", Type: "otlp", Details: details}
}

// Metrics returns the run instruments, created once on the global meter.
// Instruments created before Start follow the provider installed later.
func (t *Telemetry) Metrics() *Metrics {
	t.once.Do(func() {
		m, err := NewMetrics(Meter(instrumentationName))
		if err != nil {
			t.log.Warn("metrics unavailable", logger.ErrorFields("new_metrics", err))
			return
		}
		t.metrics = m
	})
	return t.metrics
}
