package process

import (
	"context"
	"time"
)

// Config holds defaults applied to every command a Runner executes.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	// MaxOutputBytes bounds each captured stream. Zero keeps everything.
	MaxOutputBytes int `yaml:"max_output_bytes,omitempty" mapstructure:"max_output_bytes"`
}

// Runner executes commands with a shared set of defaults.
type Runner struct {
	config Config
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{config: cfg}
}

// Config returns the runner defaults.
func (r *Runner) Config() Config {
	return r.config
}

// Run executes a command, applying runner-level defaults and timeout.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && r.config.GracePeriod > 0 {
		cmd.GracePeriod = r.config.GracePeriod
	}
	if cmd.MaxOutputBytes == 0 && r.config.MaxOutputBytes > 0 {
		cmd.MaxOutputBytes = r.config.MaxOutputBytes
	}
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}
