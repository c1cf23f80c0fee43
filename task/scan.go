package task

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/pipeline"
)

// ScanOptions controls discovery.
type ScanOptions struct {
	// Kinds in precedence order. Defaults to Ruby then Python.
	Kinds []Kind
	// Workers bounds concurrent classification. Defaults to 1.
	Workers int
}

// Scan returns one Task per immediate subdirectory of root, sorted by name.
// Symlinks to directories are followed; hidden entries are ignored. A root
// that is missing or not a directory yields a DISCOVERY_FAILURE error.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]*Task, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.DiscoveryFailure(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.DiscoveryFailure(abs, err).WithDetail("not_found", os.IsNotExist(err))
	}
	if !info.IsDir() {
		return nil, errors.DiscoveryFailure(abs, nil).WithDetail("reason", "not a directory")
	}

	// ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.DiscoveryFailure(abs, err)
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = []Kind{NewRuby(nil, nil), NewPython(nil)}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}

	classified := pipeline.OrderedParallel(pipeline.FromSlice(names), opts.Workers, func(ctx context.Context, name string) (*Task, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return classify(filepath.Join(abs, name), name, kinds), nil
	})
	tasks, err := pipeline.Collect(ctx, pipeline.Filter(classified, func(t *Task) bool { return t != nil }))
	if err != nil {
		return nil, errors.DiscoveryFailure(abs, err)
	}
	return tasks, nil
}

// classify returns nil when path is not a directory.
func classify(path, name string, kinds []Kind) *Task {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	t := &Task{Name: name, Dir: path}
	for _, k := range kinds {
		if fileExists(filepath.Join(path, k.EntryScript())) {
			t.Kind = k
			t.HasEntry = true
			t.HasManifest = fileExists(filepath.Join(path, k.Manifest()))
			break
		}
	}
	return t
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
