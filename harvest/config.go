package harvest

import (
	"path/filepath"

	"github.com/kbukum/harvester/database"
	"github.com/kbukum/harvester/validation"
)

// Config locates the store inside each task directory.
type Config struct {
	// Path is the store file relative to the task directory.
	Path string `yaml:"path" mapstructure:"path"`
	// Table is the record table read from the store.
	Table    string          `yaml:"table" mapstructure:"table"`
	Database database.Config `yaml:"database" mapstructure:"database"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "data.sqlite"
	}
	if c.Table == "" {
		c.Table = "swdata"
	}
	c.Database.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("store.path", c.Path)
	v.Custom(!filepath.IsAbs(c.Path), "store.path", "must be relative to the task directory")
	v.Required("store.table", c.Table)
	v.Merge("store.database", c.Database.Validate())
	return v.Err()
}
