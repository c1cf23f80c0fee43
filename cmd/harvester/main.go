// Command harvester runs a directory of scraper tasks, harvests the SQLite
// store each one leaves behind and writes the merged records to a workbook.
//
// Usage:
//
//	harvester run [--root DIR] [--limit N] [--timeout D] [--concurrency N] [--strict] [--output PATH] [--only a,b]
//	harvester scan [--root DIR] [--output PATH]
//	harvester version
package main

import (
	"context"
	"os"

	"github.com/kbukum/harvester/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
