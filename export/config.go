package export

import (
	"path/filepath"
	"strings"

	"github.com/kbukum/harvester/validation"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Config controls where and how tables are written.
type Config struct {
	// Path is the primary artifact location.
	Path string `yaml:"path" mapstructure:"path"`
	// FallbackPath overrides the derived CSV location.
	FallbackPath string `yaml:"fallback_path" mapstructure:"fallback_path"`
	// Format is the primary format, xlsx or csv.
	Format string `yaml:"format" mapstructure:"format"`
	// ProvenanceColumn names the leading column holding each row's task.
	ProvenanceColumn string `yaml:"provenance_column" mapstructure:"provenance_column"`
	// Sheet is the worksheet name in the workbook.
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "harvest.xlsx"
	}
	if c.Format == "" {
		c.Format = FormatXLSX
	}
	if c.ProvenanceColumn == "" {
		c.ProvenanceColumn = "source_task"
	}
	if c.Sheet == "" {
		c.Sheet = "harvest"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("output.path", c.Path)
	v.OneOf("output.format", c.Format, []string{FormatXLSX, FormatCSV})
	v.Required("output.provenance_column", c.ProvenanceColumn)
	v.Custom(len(c.Sheet) <= 31 && !strings.ContainsAny(c.Sheet, `:\/?*[]`), "output.sheet", "is not a valid worksheet name")
	return v.Err()
}

// FallbackFor returns the CSV path used when the primary write to path fails.
func (c *Config) FallbackFor(path string) string {
	if c.FallbackPath != "" {
		return c.FallbackPath
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
}

// LocalFallbackFor returns the CSV path in the working directory that is
// tried when the fallback derived from path cannot be written either. ok is
// false when a fallback path is configured or the attempt would repeat the
// derived one.
func (c *Config) LocalFallbackFor(path string) (local string, ok bool) {
	if c.FallbackPath != "" {
		return "", false
	}
	derived := c.FallbackFor(path)
	local, err := filepath.Abs(filepath.Base(derived))
	if err != nil {
		return "", false
	}
	if abs, err := filepath.Abs(derived); err == nil && abs == local {
		return "", false
	}
	return local, true
}
