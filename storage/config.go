package storage

import (
	"path"
	"strings"
	"time"

	"github.com/kbukum/harvester/validation"
)

// Supported providers.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultDir      = "published"
	DefaultRegion   = "us-east-1"
	DefaultTimeout  = 2 * time.Minute
)

// Config selects and configures the publish backend.
type Config struct {
	// Enabled turns publishing on. A disabled publisher does nothing.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Provider selects the backend: "local" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Dir is the root directory of the local backend.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey      string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey      string `yaml:"secret_key" mapstructure:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style" mapstructure:"force_path_style"`

	// Timeout bounds a single upload.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the settings of the selected provider. A disabled
// configuration is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	v := validation.New()
	v.OneOf("publish.provider", c.Provider, []string{ProviderLocal, ProviderS3})
	switch c.Provider {
	case ProviderLocal:
		v.Required("publish.dir", c.Dir)
	case ProviderS3:
		v.Required("publish.bucket", c.Bucket)
		v.Required("publish.region", c.Region)
		v.Custom((c.AccessKey == "") == (c.SecretKey == ""), "publish.secret_key", "access_key and secret_key must be set together")
	}
	v.Positive("publish.timeout", c.Timeout)
	return v.Err()
}

// Key returns the object key for a file published under runID.
func (c *Config) Key(runID, file string) string {
	parts := []string{strings.Trim(c.Prefix, "/"), runID, path.Base(file)}
	return strings.TrimPrefix(path.Join(parts...), "/")
}

// Target describes the backend for logs and the startup summary.
func (c *Config) Target() string {
	if c.Provider == ProviderS3 {
		return "s3://" + c.Bucket + "/" + strings.Trim(c.Prefix, "/")
	}
	return c.Dir
}
