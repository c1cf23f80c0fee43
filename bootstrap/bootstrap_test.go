package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/harvester/component"
	"github.com/kbukum/harvester/config"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/logger"
)

type testConfig struct {
	config.ServiceConfig
	Root string
}

func (c *testConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	return nil
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	m.record("start " + m.name)
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	m.record("stop " + m.name)
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

func (m *mockComponent) record(e string) {
	if m.events != nil {
		*m.events = append(*m.events, e)
	}
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Name: "Described", Type: "storage", Details: "dir=/tmp"}
}

func healthy(name string) component.Health {
	return component.Health{Name: name, Status: component.StatusHealthy}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "harvester", Version: "1.0.0"}, Root: "/tasks"}
	opts = append([]Option{WithLogger(logger.NewNop()), WithSignals()}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "harvester" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("unexpected graceful timeout %v", app.gracefulTimeout)
	}
	if app.Components == nil || app.Logger == nil {
		t.Fatal("expected registry and logger")
	}
}

func TestNewAppValidation(t *testing.T) {
	t.Run("plain error becomes INVALID_CONFIG", func(t *testing.T) {
		_, err := NewApp(&testConfig{}, WithLogger(logger.NewNop()))
		if !errors.HasCode(err, errors.ErrCodeInvalidConfig) || !errors.IsFatal(err) {
			t.Fatalf("expected fatal INVALID_CONFIG, got %v", err)
		}
		if !strings.Contains(err.Error(), "root is required") {
			t.Errorf("expected cause in message, got %v", err)
		}
	})
	t.Run("AppError passes through", func(t *testing.T) {
		cfg := &appErrConfig{}
		_, err := NewApp(cfg, WithLogger(logger.NewNop()))
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Message != "limit must be at least 0" {
			t.Fatalf("expected original AppError, got %v", err)
		}
	})
}

type appErrConfig struct {
	config.ServiceConfig
}

func (c *appErrConfig) Validate() error {
	return errors.InvalidConfig("limit must be at least 0")
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(time.Second))
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err != nil {
		t.Fatal(err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	var events []string
	app := newTestApp(t)
	a := &mockComponent{name: "a", health: healthy("a"), events: &events}
	b := &mockComponent{name: "b", health: healthy("b"), events: &events}
	_ = app.RegisterComponent(a)
	_ = app.RegisterComponent(b)
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "start a,start b,onStart,onReady,task,onStop,stop b,stop a"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events = %s\nwant     %s", got, want)
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	c := &mockComponent{name: "c", health: healthy("c"), stopErr: fmt.Errorf("stop failed")}
	_ = app.RegisterComponent(c)
	want := fmt.Errorf("task failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return want }); err != want {
		t.Errorf("expected task error to win, got %v", err)
	}
	if !c.stopped {
		t.Error("components must be stopped after a failed task")
	}
}

func TestRunTaskStopError(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "c", health: healthy("c"), stopErr: fmt.Errorf("stop failed")})
	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "stop failed") {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestRunTaskStartupFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*App[*testConfig], *mockComponent)
		want  string
	}{
		{"component start", func(a *App[*testConfig], _ *mockComponent) {
			_ = a.RegisterComponent(&mockComponent{name: "broken", startErr: fmt.Errorf("no bind")})
		}, "failed to start components"},
		{"start hook", func(a *App[*testConfig], _ *mockComponent) {
			a.OnStart(func(context.Context) error { return fmt.Errorf("boom") })
		}, "onStart hook failed"},
		{"ready hook", func(a *App[*testConfig], _ *mockComponent) {
			a.OnReady(func(context.Context) error { return fmt.Errorf("boom") })
		}, "onReady hook failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			first := &mockComponent{name: "first", health: healthy("first")}
			_ = app.RegisterComponent(first)
			tc.setup(app, first)

			ran := false
			err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
			if ran {
				t.Error("task must not run after a failed startup")
			}
			if !first.stopped {
				t.Error("started components must be stopped after a failed startup")
			}
		})
	}
}

func TestRunTaskContextCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	err := app.RunTask(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskSignalCancels(t *testing.T) {
	app := newTestApp(t, WithSignals(syscall.SIGUSR1))
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("signal did not cancel the task")
		}
	})
	if err != ErrInterrupted {
		t.Errorf("expected ErrInterrupted, got %v", err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("empty registry should be ready: %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{name: "ok", health: healthy("ok")})
	_ = app.RegisterComponent(&mockComponent{name: "slow", health: component.Health{Name: "slow", Status: component.StatusDegraded, Message: "lagging"}})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "slow=degraded(lagging)") {
		t.Errorf("unexpected ready check result %v", err)
	}
}

func TestCollectSummary(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "plain", health: healthy("plain")})
	_ = app.RegisterComponent(&describedComponent{mockComponent{name: "described", health: component.Health{Status: component.StatusDegraded, Message: "no backend"}}})

	s := Collect(context.Background(), "harvester", "1.0.0", app.Components, time.Millisecond)
	if len(s.Components) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(s.Components))
	}
	if s.Components[0].Name != "plain" || s.Components[0].Type != "" {
		t.Errorf("unexpected plain line %+v", s.Components[0])
	}
	d := s.Components[1]
	if d.Name != "Described" || d.Type != "storage" || d.Details != "dir=/tmp" || d.Status != component.StatusDegraded {
		t.Errorf("unexpected described line %+v", d)
	}
	s.Log(logger.NewNop())

	if empty := Collect(context.Background(), "h", "v", nil, 0); len(empty.Components) != 0 {
		t.Error("nil registry should give an empty summary")
	}
}

func TestRunTaskSetsSummary(t *testing.T) {
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "c", health: healthy("c")})
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if app.Summary == nil || len(app.Summary.Components) != 1 {
		t.Errorf("expected summary with one component, got %+v", app.Summary)
	}
}
