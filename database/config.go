package database

import (
	"fmt"
	"time"
)

// Config controls how stores are opened.
type Config struct {
	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SlowQueryThreshold marks queries that are logged as slow.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`
	// BusyTimeout is how long SQLite waits on a locked store.
	BusyTimeout time.Duration `yaml:"busy_timeout" mapstructure:"busy_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "silent"
	}
	if c.SlowQueryThreshold <= 0 {
		c.SlowQueryThreshold = time.Second
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "silent", "error", "warn", "info":
		return nil
	}
	return fmt.Errorf("database.log_level must be one of [silent error warn info] (got: %s)", c.LogLevel)
}
