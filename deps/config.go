package deps

import (
	"time"

	"github.com/kbukum/harvester/validation"
)

// Policy decides what a failed bootstrap means for execution.
type Policy string

const (
	// PolicyLenient records the failure and runs the task anyway.
	PolicyLenient Policy = "lenient"
	// PolicyStrict skips execution after a failed bootstrap.
	PolicyStrict Policy = "strict"
)

// Config controls dependency bootstrap.
type Config struct {
	Policy Policy `yaml:"policy" mapstructure:"policy" validate:"oneof=lenient strict"`
	// Timeout bounds one resolution command.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Concurrency is the number of bootstraps allowed at once.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1"`
	// GracePeriod is the SIGTERM to SIGKILL delay on timeout.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// MaxOutputBytes bounds the captured output kept for diagnostics.
	MaxOutputBytes int `yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
	// Disabled skips bootstrap entirely.
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyLenient
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = 16 * 1024
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("bootstrap", validation.ValidateSection("bootstrap", c))
	v.Positive("bootstrap.timeout", c.Timeout)
	v.Positive("bootstrap.grace_period", c.GracePeriod)
	return v.Err()
}
