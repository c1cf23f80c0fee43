// Package component defines lifecycle-managed pieces of a harvester process,
// such as the telemetry exporters and the status server.
//
// Components are started in registration order and stopped in reverse order
// by a Registry. Components that implement Describable appear in the startup
// summary.
package component
