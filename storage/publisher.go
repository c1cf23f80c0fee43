package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kbukum/harvester/component"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
)

// Receipt describes a published artifact.
type Receipt struct {
	Provider string
	Key      string
	URL      string
	Bytes    int64
	Duration time.Duration
}

// Publisher uploads run artifacts to the configured backend. It is a
// lifecycle component: Start opens the backend, and a backend that fails to
// open leaves the publisher degraded instead of failing the run.
type Publisher struct {
	cfg Config
	log *logger.Logger

	mu      sync.RWMutex
	store   Storage
	openErr error
}

var (
	_ component.Component   = (*Publisher)(nil)
	_ component.Describable = (*Publisher)(nil)
)

// NewPublisher creates a publisher for cfg.
func NewPublisher(cfg Config, log *logger.Logger) *Publisher {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{cfg: cfg, log: log.WithComponent("publisher")}
}

// Enabled reports whether publishing is configured.
func (p *Publisher) Enabled() bool { return p.cfg.Enabled }

// Config returns the effective configuration.
func (p *Publisher) Config() Config { return p.cfg }

func (p *Publisher) Name() string { return "publisher" }

// Start opens the backend when publishing is enabled.
func (p *Publisher) Start(ctx context.Context) error {
	if !p.cfg.Enabled {
		p.log.Debug("publishing disabled")
		return nil
	}
	s, err := New(ctx, p.cfg, p.log)

	p.mu.Lock()
	p.store, p.openErr = s, err
	p.mu.Unlock()

	if err != nil {
		p.log.Warn("publish backend unavailable", logger.Fields("provider", p.cfg.Provider, logger.FieldError, err.Error()))
	}
	return nil
}

// Stop drops the backend.
func (p *Publisher) Stop(_ context.Context) error {
	p.mu.Lock()
	p.store = nil
	p.mu.Unlock()
	return nil
}

func (p *Publisher) Health(_ context.Context) component.Health {
	h := component.Health{Name: p.Name(), Status: component.StatusHealthy}
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case !p.cfg.Enabled:
		h.Message = "disabled"
	case p.openErr != nil:
		h.Status = component.StatusDegraded
		h.Message = p.openErr.Error()
	case p.store == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	default:
		h.Message = p.cfg.Target()
	}
	return h
}

// Describe returns a summary for the startup display.
func (p *Publisher) Describe() component.Description {
	details := "disabled"
	if p.cfg.Enabled {
		details = fmt.Sprintf("provider=%s target=%s", p.cfg.Provider, p.cfg.Target())
	}
	return component.Description{Name: "Publisher", Type: "storage", Details: details}
}

// Publish uploads the file at path under runID. Errors are PUBLISH_FAILURE
// and never fatal.
func (p *Publisher) Publish(ctx context.Context, runID, path string) (*Receipt, error) {
	if !p.cfg.Enabled {
		return nil, nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanPublish)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPath, path)

	receipt, err := p.publish(ctx, runID, path)
	if err != nil {
		appErr := errors.PublishFailure(p.cfg.Provider, path, err)
		observability.SetSpanError(ctx, appErr)
		p.log.Warn("publish failed", logger.MergeWithError(logger.Fields(logger.FieldPath, path, "provider", p.cfg.Provider), err))
		return nil, appErr
	}
	p.log.Info("artifact published", logger.MergeWithDuration(logger.Fields(
		logger.FieldPath, path,
		"key", receipt.Key,
		"url", receipt.URL,
	), receipt.Duration))
	return receipt, nil
}

func (p *Publisher) publish(ctx context.Context, runID, path string) (*Receipt, error) {
	p.mu.RLock()
	store, openErr := p.store, p.openErr
	p.mu.RUnlock()
	if openErr != nil {
		return nil, openErr
	}
	if store == nil {
		return nil, fmt.Errorf("publisher not started")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	key := p.cfg.Key(runID, path)
	if err := store.Upload(ctx, key, f); err != nil {
		return nil, err
	}
	u, err := store.URL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		Provider: p.cfg.Provider,
		Key:      key,
		URL:      u,
		Bytes:    info.Size(),
		Duration: time.Since(start),
	}, nil
}
