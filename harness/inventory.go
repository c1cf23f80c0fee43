package harness

import (
	"context"

	"github.com/kbukum/harvester/export"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/task"
)

// Inventory scans the configured root without running anything and returns
// one entry per task directory. With a non-empty path the entries are also
// exported through the run's exporter, fallback rules included.
func (h *Harness) Inventory(ctx context.Context, path string) ([]task.InventoryEntry, *export.Report, error) {
	tasks, err := task.Scan(ctx, h.cfg.Root, task.ScanOptions{Kinds: h.kinds, Workers: h.cfg.DiscoveryWorkers})
	if err != nil {
		h.log.Error("task discovery failed", logger.ErrorFields("discover", err))
		return nil, nil, err
	}
	entries := task.Inventory(tasks)
	h.log.Info("inventory built", logger.Fields(FieldRoot, h.cfg.Root, "tasks", len(entries)))
	if path == "" {
		return entries, nil, nil
	}

	t := export.Table{Columns: task.InventoryColumns, Rows: make([][]any, 0, len(entries))}
	for _, e := range entries {
		t.Rows = append(t.Rows, e.Values())
	}
	report, err := h.exporter.ExportTable(ctx, t, path)
	if err != nil {
		return entries, nil, err
	}
	return entries, report, nil
}
