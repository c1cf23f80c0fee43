package task

import (
	"github.com/kbukum/harvester/process"
)

// Runtime kind names.
const (
	KindRuby    = "ruby"
	KindPython  = "python"
	KindUnknown = "unknown"
)

// Kind describes one task runtime.
type Kind interface {
	// Name returns the kind name used in config, logs and reports.
	Name() string
	// EntryScript is the marker file that makes a directory this kind.
	EntryScript() string
	// Manifest is the optional dependency manifest file.
	Manifest() string
	// BootstrapCommand returns the dependency resolution command. ok is false
	// when the task has no manifest and nothing needs resolving.
	BootstrapCommand(t *Task) (cmd process.Command, ok bool)
	// RunCommand returns the command that executes the task's entry script.
	RunCommand(t *Task) process.Command
}

// Ruby runs scraper.rb, through Bundler when a Gemfile is present.
type Ruby struct {
	Interpreter []string
	Bundler     []string
}

// NewRuby returns a Ruby kind using the given argv prefixes, falling back to
// "ruby" and "bundle".
func NewRuby(interpreter, bundler []string) Ruby {
	if len(interpreter) == 0 {
		interpreter = []string{"ruby"}
	}
	if len(bundler) == 0 {
		bundler = []string{"bundle"}
	}
	return Ruby{Interpreter: interpreter, Bundler: bundler}
}

func (Ruby) Name() string        { return KindRuby }
func (Ruby) EntryScript() string { return "scraper.rb" }
func (Ruby) Manifest() string    { return "Gemfile" }

// BootstrapCommand runs "bundle update" so pinned git dependencies are
// re-resolved.
func (r Ruby) BootstrapCommand(t *Task) (process.Command, bool) {
	if !t.HasManifest {
		return process.Command{}, false
	}
	return command(t.Dir, r.Bundler, "update"), true
}

func (r Ruby) RunCommand(t *Task) process.Command {
	if t.HasManifest {
		args := append([]string{"exec"}, r.Interpreter...)
		return command(t.Dir, r.Bundler, append(args, r.EntryScript())...)
	}
	return command(t.Dir, r.Interpreter, r.EntryScript())
}

// Python runs scraper.py, installing requirements.txt first when present.
type Python struct {
	Interpreter []string
}

// NewPython returns a Python kind, defaulting to "python3".
func NewPython(interpreter []string) Python {
	if len(interpreter) == 0 {
		interpreter = []string{"python3"}
	}
	return Python{Interpreter: interpreter}
}

func (Python) Name() string        { return KindPython }
func (Python) EntryScript() string { return "scraper.py" }
func (Python) Manifest() string    { return "requirements.txt" }

func (p Python) BootstrapCommand(t *Task) (process.Command, bool) {
	if !t.HasManifest {
		return process.Command{}, false
	}
	return command(t.Dir, p.Interpreter, "-m", "pip", "install", "-r", p.Manifest()), true
}

func (p Python) RunCommand(t *Task) process.Command {
	return command(t.Dir, p.Interpreter, p.EntryScript())
}

func command(dir string, argv []string, extra ...string) process.Command {
	args := make([]string, 0, len(argv)-1+len(extra))
	args = append(args, argv[1:]...)
	args = append(args, extra...)
	return process.Command{Binary: argv[0], Args: args, Dir: dir}
}
