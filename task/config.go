package task

import (
	"fmt"

	"github.com/kbukum/harvester/validation"
)

// Config selects the runtime kinds and their commands.
type Config struct {
	// Order lists kind names by precedence when a directory carries
	// several entry scripts.
	Order  []string     `yaml:"order" mapstructure:"order"`
	Ruby   RubyConfig   `yaml:"ruby" mapstructure:"ruby"`
	Python PythonConfig `yaml:"python" mapstructure:"python"`
}

// RubyConfig overrides the Ruby argv prefixes.
type RubyConfig struct {
	Interpreter []string `yaml:"interpreter" mapstructure:"interpreter"`
	Bundler     []string `yaml:"bundler" mapstructure:"bundler"`
}

// PythonConfig overrides the Python interpreter argv prefix.
type PythonConfig struct {
	Interpreter []string `yaml:"interpreter" mapstructure:"interpreter"`
}

// ApplyDefaults sets the default kind precedence.
func (c *Config) ApplyDefaults() {
	if len(c.Order) == 0 {
		c.Order = []string{KindRuby, KindPython}
	}
}

// Validate checks kind names and rejects duplicates.
func (c *Config) Validate() error {
	v := validation.New()
	seen := map[string]bool{}
	for i, name := range c.Order {
		field := fmt.Sprintf("kinds.order[%d]", i)
		v.OneOf(field, name, []string{KindRuby, KindPython})
		v.Custom(!seen[name], field, "duplicate kind "+name)
		seen[name] = true
	}
	return v.Err()
}

// Kinds builds the configured kinds in precedence order.
func (c *Config) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c.Order))
	for _, name := range c.Order {
		switch name {
		case KindRuby:
			kinds = append(kinds, NewRuby(c.Ruby.Interpreter, c.Ruby.Bundler))
		case KindPython:
			kinds = append(kinds, NewPython(c.Python.Interpreter))
		}
	}
	return kinds
}
