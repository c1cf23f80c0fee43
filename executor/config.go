package executor

import (
	"time"

	"github.com/kbukum/harvester/validation"
)

// Config bounds task execution.
type Config struct {
	// Timeout is the wall-clock budget of one task.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// GracePeriod is the SIGTERM to SIGKILL delay once the budget is spent.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// MaxOutputBytes is the tail kept for each of stdout and stderr.
	MaxOutputBytes int `yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
	// Env is added to the inherited environment, as KEY=value.
	Env []string `yaml:"env" mapstructure:"env"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = 64 * 1024
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New()
	v.Positive("executor.timeout", c.Timeout)
	v.Positive("executor.grace_period", c.GracePeriod)
	v.Min("executor.max_output_bytes", c.MaxOutputBytes, 1)
	return v.Err()
}
