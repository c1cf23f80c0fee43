package logger

import (
	"sync"
)

// Components are the named stage loggers of a harvest run.
var Components = []string{"cli", "harness", "deps", "executor", "harvest", "export", "publisher"}

var (
	namedMu sync.RWMutex
	named   = map[string]*Logger{}
)

// Register stores l under name, replacing any earlier logger.
func Register(name string, l *Logger) {
	namedMu.Lock()
	named[name] = l
	namedMu.Unlock()
}

// Get returns the logger registered under name. Unknown names get the global
// logger tagged with name as its component, so callers never see nil.
func Get(name string) *Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults tags the current global logger once per name and stores
// the results. With no names it seeds every entry of Components. Call it
// after Init so the stage loggers pick up the configured level and format.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = Components
	}
	base := GetGlobalLogger()
	namedMu.Lock()
	defer namedMu.Unlock()
	for _, name := range names {
		named[name] = base.WithComponent(name)
	}
}
