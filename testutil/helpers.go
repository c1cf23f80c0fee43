package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/harvester/component"
)

// THelper ties component lifecycles to a test.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T.
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context used for Start.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Start starts c and stops it when the test ends. A start failure fails the
// test immediately.
func (h *THelper) Start(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Stop(ctx); err != nil {
			h.t.Errorf("failed to stop %s: %v", c.Name(), err)
		}
	})
}

// Eventually polls cond until it holds or timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
