package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkhead_SerializesWithSingleSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "bootstrap"})
	if b.MaxConcurrent() != 1 {
		t.Fatalf("expected default of 1 slot, got %d", b.MaxConcurrent())
	}

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				cur := atomic.AddInt32(&active, 1)
				if cur > atomic.LoadInt32(&peak) {
					atomic.StoreInt32(&peak, cur)
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Errorf("expected serialized execution, peak %d", peak)
	}
}

func TestBulkhead_FailFast(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 1, FailFast: true})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var rejected error
	b.config.OnReject = func(_ string, err error) { rejected = err }
	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if !errors.Is(rejected, ErrBulkheadFull) {
		t.Errorf("expected reject hook with ErrBulkheadFull, got %v", rejected)
	}
	close(release)
}

func TestBulkhead_MaxWaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 1, MaxWait: 30 * time.Millisecond})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
	close(release)
}

func TestBulkhead_WaitHonorsContext(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err := b.Execute(ctx, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if called {
		t.Error("fn must not run without a slot")
	}
	close(release)
}

func TestBulkhead_HooksAndResult(t *testing.T) {
	var acquired, released int32
	b := NewBulkhead(BulkheadConfig{
		Name:          "hooks",
		MaxConcurrent: 2,
		OnAcquire:     func(string, time.Duration) { atomic.AddInt32(&acquired, 1) },
		OnRelease:     func(string) { atomic.AddInt32(&released, 1) },
	})

	v, err := ExecuteWithResult(b, context.Background(), func() (string, error) {
		if b.InUse() != 1 {
			t.Errorf("expected 1 slot in use, got %d", b.InUse())
		}
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("unexpected result %q, %v", v, err)
	}
	if acquired != 1 || released != 1 {
		t.Errorf("expected hooks to fire once, got acquire=%d release=%d", acquired, released)
	}
	if b.InUse() != 0 {
		t.Errorf("expected slot released, got %d in use", b.InUse())
	}
}
