package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// checkSheetLimits rejects tables a worksheet cannot hold without clipping.
func checkSheetLimits(t Table) error {
	if len(t.Rows)+1 > excelize.TotalRows {
		return fmt.Errorf("%d rows exceed the worksheet limit of %d", len(t.Rows)+1, excelize.TotalRows)
	}
	if len(t.Columns) > excelize.MaxColumns {
		return fmt.Errorf("%d columns exceed the worksheet limit of %d", len(t.Columns), excelize.MaxColumns)
	}
	for _, c := range t.Columns {
		if len([]rune(c)) > excelize.TotalCellChars {
			return fmt.Errorf("column name exceeds %d characters", excelize.TotalCellChars)
		}
	}
	for i, row := range t.Rows {
		for j, v := range row {
			if s, ok := v.(string); ok && len(s) > excelize.TotalCellChars && len([]rune(s)) > excelize.TotalCellChars {
				return fmt.Errorf("cell %s%d exceeds %d characters", columnName(j), i+2, excelize.TotalCellChars)
			}
		}
	}
	return nil
}

func columnName(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return "?"
	}
	return name
}

// writeXLSX streams t into a single-sheet workbook at path.
func writeXLSX(path, sheet string, t Table) error {
	if err := checkSheetLimits(t); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	return atomicWrite(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

// writeCSV writes t as RFC 4180 CSV at path.
func writeCSV(path string, t Table) error {
	return atomicWrite(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
		record := make([]string, len(t.Columns))
		for _, row := range t.Rows {
			for i := range record {
				record[i] = ""
				if i < len(row) {
					record[i] = formatValue(row[i])
				}
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// atomicWrite writes through a temporary file in the target directory and
// renames it into place.
func atomicWrite(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
