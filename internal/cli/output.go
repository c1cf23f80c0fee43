package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kbukum/harvester/export"
	"github.com/kbukum/harvester/harness"
	"github.com/kbukum/harvester/task"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints rows under a header and a dashed rule.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

type summaryJSON struct {
	RunID         string `json:"run_id"`
	Attempted     int    `json:"attempted"`
	Succeeded     int    `json:"succeeded"`
	Failed        int    `json:"failed"`
	TimedOut      int    `json:"timed_out"`
	Skipped       int    `json:"skipped"`
	WithData      int    `json:"with_data"`
	EmptyHarvests int    `json:"empty_harvests"`
	TotalRecords  int    `json:"total_records"`
	Output        string `json:"output,omitempty"`
	Fallback      bool   `json:"fallback,omitempty"`
	Published     string `json:"published,omitempty"`
	Interrupted   bool   `json:"interrupted,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
}

func printSummary(w io.Writer, asJSON bool, s *harness.Summary) error {
	if !asJSON {
		_, err := s.WriteTo(w)
		return err
	}
	return writeJSON(w, summaryJSON{
		RunID:         s.RunID,
		Attempted:     s.Attempted,
		Succeeded:     s.Succeeded,
		Failed:        s.Failed,
		TimedOut:      s.TimedOut,
		Skipped:       s.Skipped,
		WithData:      s.WithData,
		EmptyHarvests: s.EmptyHarvests,
		TotalRecords:  s.TotalRecords,
		Output:        s.OutputPath,
		Fallback:      s.Fallback,
		Published:     s.PublishedTo,
		Interrupted:   s.Interrupted,
		DurationMS:    s.Duration.Milliseconds(),
	})
}

func printInventory(w io.Writer, asJSON bool, entries []task.InventoryEntry) error {
	if asJSON {
		rows := make([]map[string]any, len(entries))
		for i, e := range entries {
			row := make(map[string]any, len(task.InventoryColumns))
			for j, v := range e.Values() {
				row[task.InventoryColumns[j]] = v
			}
			rows[i] = row
		}
		return writeJSON(w, rows)
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Name, e.Kind,
			strconv.FormatBool(e.HasRubyEntry), strconv.FormatBool(e.HasPythonEntry),
			strconv.FormatBool(e.HasManifest), strconv.Itoa(e.FileCount),
			e.ConfigFound, e.Path,
		}
	}
	return writeTable(w, task.InventoryColumns, rows)
}

func printExport(w io.Writer, asJSON bool, r *export.Report) error {
	if asJSON {
		return writeJSON(w, map[string]any{"path": r.Path, "format": r.Format, "fallback": r.Fallback, "rows": r.Rows})
	}
	if r.Fallback {
		_, err := fmt.Fprintf(w, "wrote %d tasks to %s (CSV fallback: %v)\n", r.Rows, r.Path, r.PrimaryErr)
		return err
	}
	_, err := fmt.Fprintf(w, "wrote %d tasks to %s\n", r.Rows, r.Path)
	return err
}
