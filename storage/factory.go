package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/harvester/logger"
)

// Factory creates a backend from the publish configuration.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a backend available under name. Backend packages
// call it from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the backend selected by cfg.Provider. The backend package must
// have been imported so its factory is registered.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	log.Debug("initializing storage", logger.Fields("provider", cfg.Provider, logger.FieldPath, cfg.Target()))
	return f(ctx, cfg, log)
}
