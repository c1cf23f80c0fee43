// Package export writes tables to disk as XLSX, falling back to CSV when the
// workbook cannot be written.
//
// The workbook is checked against the sheet limits before writing, so an
// oversized aggregate fails over to CSV instead of being silently clipped.
package export
