// Package server runs the run-status HTTP server: Gin behind an h2c handler,
// managed as a component for the lifetime of a run.
//
// # Endpoints
//
//   - /healthz: component health aggregation
//   - /status: counts and per-task outcomes of the run so far
//   - /version: build information
package server
