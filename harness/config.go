package harness

import (
	"github.com/kbukum/harvester/config"
	"github.com/kbukum/harvester/deps"
	"github.com/kbukum/harvester/executor"
	"github.com/kbukum/harvester/export"
	"github.com/kbukum/harvester/harvest"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/server"
	"github.com/kbukum/harvester/storage"
	"github.com/kbukum/harvester/task"
	"github.com/kbukum/harvester/validation"
)

// DefaultRoot is the task root used when none is configured.
const DefaultRoot = "tasks"

// Config is the complete run configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Root holds one subdirectory per task.
	Root string `yaml:"root" mapstructure:"root" validate:"required"`
	// Limit caps the number of runnable tasks run; 0 runs all of them.
	Limit int `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
	// Concurrency is the number of tasks processed at once.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=1"`
	// DiscoveryWorkers bounds concurrent classification during scan.
	DiscoveryWorkers int `yaml:"discovery_workers" mapstructure:"discovery_workers" validate:"gte=1"`
	// Only restricts the run to the named tasks.
	Only []string `yaml:"only" mapstructure:"only" validate:"dive,required"`

	Kinds     task.Config          `yaml:"kinds" mapstructure:"kinds"`
	Bootstrap deps.Config          `yaml:"bootstrap" mapstructure:"bootstrap"`
	Executor  executor.Config      `yaml:"executor" mapstructure:"executor"`
	Store     harvest.Config       `yaml:"store" mapstructure:"store"`
	Output    export.Config        `yaml:"output" mapstructure:"output"`
	Publish   storage.Config       `yaml:"publish" mapstructure:"publish"`
	Status    server.Config        `yaml:"status" mapstructure:"status"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.DiscoveryWorkers == 0 {
		c.DiscoveryWorkers = 4
	}
	c.Kinds.ApplyDefaults()
	c.Bootstrap.ApplyDefaults()
	c.Executor.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Output.ApplyDefaults()
	c.Publish.ApplyDefaults()
	c.Status.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks every section and reports all problems in one
// INVALID_CONFIG error.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("service", c.ServiceConfig.Validate())
	v.Merge("run", validation.ValidateStruct(c))
	v.Merge("kinds", c.Kinds.Validate())
	v.Merge("bootstrap", c.Bootstrap.Validate())
	v.Merge("executor", c.Executor.Validate())
	v.Merge("store", c.Store.Validate())
	v.Merge("output", c.Output.Validate())
	v.Merge("publish", c.Publish.Validate())
	v.Merge("status", c.Status.Validate())
	v.Merge("telemetry", c.Telemetry.Validate())
	return v.Err()
}

// ServiceInfo identifies the run to telemetry.
func (c *Config) ServiceInfo() observability.ServiceInfo {
	return observability.ServiceInfo{Name: c.Name, Version: c.Version, Environment: c.Environment}
}
