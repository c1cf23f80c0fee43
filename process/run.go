package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const defaultGracePeriod = 5 * time.Second

var (
	// ErrLaunch means the process could not be started.
	ErrLaunch = errors.New("process: launch failed")
	// ErrKilled means the context ended the process.
	ErrKilled = errors.New("process: killed by context")
	// ErrExit means the process ran and exited with a non-zero status.
	ErrExit = errors.New("process: non-zero exit")
)

// Run executes a subprocess in its own process group and waits for it.
// If the context ends, the group gets SIGTERM, then SIGKILL after GracePeriod.
// Run never waits past the grace period and SIGKILLs the group on return so
// no descendants outlive the call.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("%w: binary is required", ErrLaunch)
	}
	if err := ctx.Err(); err != nil {
		return &Result{ExitCode: -1, Killed: true}, fmt.Errorf("%w: %w", ErrKilled, err)
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod <= 0 {
		gracePeriod = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	stdout := NewTailBuffer(cmd.MaxOutputBytes)
	stderr := NewTailBuffer(cmd.MaxOutputBytes)
	c.Stdout = stdout
	c.Stderr = stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var (
		escalateMu sync.Mutex
		escalate   *time.Timer
	)
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		pgid := c.Process.Pid
		escalateMu.Lock()
		escalate = time.AfterFunc(gracePeriod, func() {
			_ = signalGroup(pgid, unix.SIGKILL)
		})
		escalateMu.Unlock()
		return signalGroup(pgid, unix.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	if err := c.Start(); err != nil {
		return &Result{ExitCode: -1, Duration: time.Since(start)}, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	pid := c.Process.Pid

	waitErr := c.Wait()
	duration := time.Since(start)

	escalateMu.Lock()
	if escalate != nil {
		escalate.Stop()
	}
	escalateMu.Unlock()
	_ = signalGroup(pid, unix.SIGKILL)

	result := &Result{
		Stdout:          stdout.Bytes(),
		Stderr:          stderr.Bytes(),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
		ExitCode:        exitCode(c.ProcessState),
		Pid:             pid,
		Duration:        duration,
	}

	if ctx.Err() != nil && (waitErr != nil || result.ExitCode != 0) {
		result.Killed = true
		return result, fmt.Errorf("%w: %w", ErrKilled, ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("%w: exit code %d", ErrExit, result.ExitCode)
		}
		// Pipe copy errors after a clean exit still leave a usable status.
		if result.ExitCode != 0 {
			return result, fmt.Errorf("%w: exit code %d: %w", ErrExit, result.ExitCode, waitErr)
		}
	}
	return result, nil
}

func exitCode(ps *os.ProcessState) int {
	if ps == nil {
		return -1
	}
	return ps.ExitCode()
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
