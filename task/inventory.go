package task

import (
	"os"
	"path/filepath"
)

// Morph config presence values.
const (
	ConfigFound      = "Yes"
	ConfigMissing    = "No"
	ConfigUnreadable = "Error reading"
)

// InventoryEntry describes one task directory for the scan report.
type InventoryEntry struct {
	Name           string
	Kind           string
	HasRubyEntry   bool
	HasPythonEntry bool
	HasManifest    bool
	FileCount      int
	ConfigFound    string
	Path           string
}

// InventoryColumns are the report column names, in order.
var InventoryColumns = []string{
	"task", "kind", "has_ruby_entry", "has_python_entry",
	"has_manifest", "file_count", "config_found", "path",
}

// Values returns the entry as a row aligned with InventoryColumns.
func (e InventoryEntry) Values() []any {
	return []any{
		e.Name, e.Kind, e.HasRubyEntry, e.HasPythonEntry,
		e.HasManifest, int64(e.FileCount), e.ConfigFound, e.Path,
	}
}

// Inventory builds report entries for tasks. File count is the number of
// immediate entries in the task directory.
func Inventory(tasks []*Task) []InventoryEntry {
	out := make([]InventoryEntry, 0, len(tasks))
	for _, t := range tasks {
		e := InventoryEntry{
			Name:           t.Name,
			Kind:           t.KindName(),
			HasRubyEntry:   fileExists(filepath.Join(t.Dir, Ruby{}.EntryScript())),
			HasPythonEntry: fileExists(filepath.Join(t.Dir, Python{}.EntryScript())),
			HasManifest:    t.HasManifest,
			ConfigFound:    morphConfig(t.Dir),
			Path:           t.Dir,
		}
		if entries, err := os.ReadDir(t.Dir); err == nil {
			e.FileCount = len(entries)
		}
		out = append(out, e)
	}
	return out
}

func morphConfig(dir string) string {
	path := filepath.Join(dir, "morph.yaml")
	if _, err := os.Stat(path); err != nil {
		return ConfigMissing
	}
	f, err := os.Open(path)
	if err != nil {
		return ConfigUnreadable
	}
	_ = f.Close()
	return ConfigFound
}
