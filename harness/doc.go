// Package harness runs a complete harvest: it discovers task directories,
// bootstraps and executes each one with bounded concurrency, harvests their
// stores and exports the merged dataset.
//
// Per-task failures never stop a run. They are recorded as outcomes and
// reported in the Summary; only discovery and export failures are returned
// as errors.
package harness
