package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kbukum/harvester/aggregate"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/harvest"
)

func sampleAggregate() *aggregate.Aggregate {
	return aggregate.Merge([]*harvest.Dataset{
		{Task: "alpha", Columns: []string{"a", "b"}, Rows: [][]any{{int64(1), "x"}, {int64(2), nil}}},
		{Task: "beta", Columns: []string{"c"}, Rows: [][]any{{1.5}}},
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "harvest.xlsx")
	e := New(Config{Path: path})

	report, err := e.Export(context.Background(), sampleAggregate(), "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if report.Path != path || report.Fallback || report.Format != FormatXLSX || report.Rows != 3 || report.Columns != 4 {
		t.Errorf("unexpected report %+v", report)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("harvest")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"source_task", "a", "b", "c"},
		{"alpha", "1", "x"},
		{"alpha", "2"},
		{"beta", "", "", "1.5"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestExportFallsBackToCSV(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "harvest.xlsx")
	if err := os.Mkdir(primary, 0o755); err != nil {
		t.Fatal(err)
	}

	report, err := New(Config{Path: primary}).Export(context.Background(), sampleAggregate(), "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantPath := filepath.Join(dir, "harvest.csv")
	if !report.Fallback || report.Path != wantPath || report.Format != FormatCSV || report.PrimaryErr == nil {
		t.Fatalf("unexpected report %+v", report)
	}
	got := readCSV(t, wantPath)
	want := [][]string{
		{"source_task", "a", "b", "c"},
		{"alpha", "1", "x", ""},
		{"alpha", "2", "", ""},
		{"beta", "", "", "1.5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("csv = %q", got)
	}
}

func TestExportCellLimitFallsBack(t *testing.T) {
	dir := t.TempDir()
	agg := aggregate.Merge([]*harvest.Dataset{
		{Task: "huge", Columns: []string{"description"}, Rows: [][]any{{strings.Repeat("x", excelize.TotalCellChars+1)}}},
	})
	fallback := filepath.Join(dir, "elsewhere", "fallback.csv")
	report, err := New(Config{Path: filepath.Join(dir, "h.xlsx"), FallbackPath: fallback}).Export(context.Background(), agg, "")
	if err != nil {
		t.Fatal(err)
	}
	if !report.Fallback || report.Path != fallback {
		t.Fatalf("expected fallback to %s, got %+v", fallback, report)
	}
	if !strings.Contains(report.PrimaryErr.Error(), "exceeds") {
		t.Errorf("unexpected primary error %v", report.PrimaryErr)
	}
	if _, err := os.Stat(filepath.Join(dir, "h.xlsx")); !os.IsNotExist(err) {
		t.Error("no partial workbook should be left")
	}
	if got := readCSV(t, fallback); len(got[1][1]) != excelize.TotalCellChars+1 {
		t.Error("fallback must keep the full cell")
	}
}

func TestExportBothFail(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "harvest.xlsx")
	fallback := filepath.Join(dir, "harvest.csv")
	for _, p := range []string{primary, fallback} {
		if err := os.Mkdir(p, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(dir)
	report, err := New(Config{Path: primary}).Export(context.Background(), sampleAggregate(), "")
	if report != nil {
		t.Errorf("expected no report, got %+v", report)
	}
	if !errors.HasCode(err, errors.ErrCodeExportFailure) || !errors.IsFatal(err) {
		t.Fatalf("expected fatal EXPORT_FAILURE, got %v", err)
	}
}

func TestExportFallsBackToWorkingDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	wd := t.TempDir()
	t.Chdir(wd)

	tests := []struct {
		name     string
		cfg      Config
		wantPath string
		wantErr  bool
	}{
		{"derived fallback blocked", Config{Path: filepath.Join(blocker, "combined.xlsx")}, filepath.Join(wd, "combined.csv"), false},
		{"configured fallback is final", Config{Path: filepath.Join(blocker, "combined.xlsx"), FallbackPath: filepath.Join(blocker, "out.csv")}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report, err := New(tc.cfg).Export(context.Background(), sampleAggregate(), "")
			if tc.wantErr {
				if !errors.HasCode(err, errors.ErrCodeExportFailure) {
					t.Fatalf("expected EXPORT_FAILURE, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			wantDir, _ := filepath.EvalSymlinks(filepath.Dir(tc.wantPath))
			gotDir, _ := filepath.EvalSymlinks(filepath.Dir(report.Path))
			if !report.Fallback || gotDir != wantDir || filepath.Base(report.Path) != "combined.csv" {
				t.Fatalf("expected fallback at %s, got %+v", tc.wantPath, report)
			}
			if got := readCSV(t, report.Path); len(got) != 4 || got[0][0] != "source_task" {
				t.Errorf("unexpected csv %q", got)
			}
		})
	}
}

func TestLocalFallbackFor(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)
	abs, _ := filepath.Abs("combined.csv")

	tests := []struct {
		name   string
		cfg    Config
		path   string
		want   string
		wantOK bool
	}{
		{"elsewhere", Config{}, "/missing/dir/combined.xlsx", abs, true},
		{"already in working directory", Config{}, "combined.xlsx", "", false},
		{"configured fallback", Config{FallbackPath: "/tmp/out.csv"}, "/missing/combined.xlsx", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.cfg.LocalFallbackFor(tc.path)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("LocalFallbackFor(%q) = %q, %v; want %q, %v", tc.path, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestExportEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harvest.xlsx")
	report, err := New(Config{Path: path}).Export(context.Background(), aggregate.Merge(nil), "")
	if err != nil || report != nil {
		t.Fatalf("expected nothing, got %+v %v", report, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestExportCSVPrimary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.csv")
	report, err := New(Config{Format: FormatCSV}).Export(context.Background(), sampleAggregate(), path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Fallback || report.Path != path {
		t.Errorf("unexpected report %+v", report)
	}

	blocked := filepath.Join(t.TempDir(), "dir.csv")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Format: FormatCSV}).Export(context.Background(), sampleAggregate(), blocked); !errors.HasCode(err, errors.ErrCodeExportFailure) {
		t.Errorf("csv primary has no fallback, got %v", err)
	}
}

func TestExportTableInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	table := Table{
		Columns: []string{"task", "kind", "file_count"},
		Rows:    [][]any{{"alpha", "ruby", int64(3)}, {"beta", "unknown", int64(0)}},
	}
	if _, err := New(Config{Format: FormatCSV}).ExportTable(context.Background(), table, path); err != nil {
		t.Fatal(err)
	}
	got := readCSV(t, path)
	if len(got) != 3 || got[1][2] != "3" || got[2][1] != "unknown" {
		t.Errorf("unexpected inventory %q", got)
	}
}

func TestFromAggregateProvenanceCollision(t *testing.T) {
	agg := aggregate.Merge([]*harvest.Dataset{
		{Task: "t", Columns: []string{"source_task", "x"}, Rows: [][]any{{"theirs", int64(1)}}},
	})
	table := FromAggregate(agg, "source_task")
	if table.Columns[0] != "source_task_" || table.Rows[0][0] != "t" || table.Rows[0][1] != "theirs" {
		t.Errorf("unexpected table %+v", table)
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{int64(-4), "-4"},
		{0.1, "0.1"},
		{1e21, "1000000000000000000000"},
		{true, "true"},
		{ts, "2024-03-01T12:00:00Z"},
		{[]byte("b"), "b"},
	}
	for _, tc := range tests {
		if got := formatValue(tc.in); got != tc.want {
			t.Errorf("formatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Path != "harvest.xlsx" || cfg.ProvenanceColumn != "source_task" || cfg.Format != FormatXLSX {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.FallbackFor("/out/run.xlsx"); got != "/out/run.csv" {
		t.Errorf("derived fallback = %q", got)
	}
	cfg.Format = "ods"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unsupported format error")
	}
}
