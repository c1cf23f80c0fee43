package task_test

import (
	"context"
	"os"
	"testing"

	"github.com/kbukum/harvester/task"
	"github.com/kbukum/harvester/testutil"
)

func TestInventory(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.Task("alpha").File("scraper.rb", "").File("scraper.py", "").File("Gemfile", "").File("morph.yaml", "a: 1")
	ws.Task("beta").File("scraper.py", "")
	locked := ws.Task("gamma").File("morph.yaml", "x")
	if err := os.Chmod(locked.Path("morph.yaml"), 0o000); err != nil {
		t.Fatal(err)
	}

	tasks, err := task.Scan(context.Background(), ws.Root, task.ScanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	entries := task.Inventory(tasks)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	alpha := entries[0]
	if alpha.Kind != task.KindRuby || !alpha.HasRubyEntry || !alpha.HasPythonEntry || !alpha.HasManifest {
		t.Errorf("unexpected alpha entry %+v", alpha)
	}
	if alpha.FileCount != 4 || alpha.ConfigFound != task.ConfigFound {
		t.Errorf("expected 4 files and config found, got %d %q", alpha.FileCount, alpha.ConfigFound)
	}

	beta := entries[1]
	if beta.Kind != task.KindPython || beta.HasRubyEntry || beta.ConfigFound != task.ConfigMissing {
		t.Errorf("unexpected beta entry %+v", beta)
	}

	gamma := entries[2]
	if gamma.Kind != task.KindUnknown {
		t.Errorf("expected unknown kind, got %q", gamma.Kind)
	}
	if os.Geteuid() != 0 && gamma.ConfigFound != task.ConfigUnreadable {
		t.Errorf("expected unreadable config, got %q", gamma.ConfigFound)
	}

	row := alpha.Values()
	if len(row) != len(task.InventoryColumns) {
		t.Fatalf("row has %d values for %d columns", len(row), len(task.InventoryColumns))
	}
	if row[0] != "alpha" || row[5] != int64(4) {
		t.Errorf("unexpected row %v", row)
	}
}
