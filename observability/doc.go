// Package observability wires OpenTelemetry traces and metrics for harvester
// runs.
//
// Telemetry is a lifecycle component. When disabled it installs nothing and
// every span and instrument falls through to the global no-op providers:
//
//	tel := observability.NewTelemetry(cfg.Telemetry, observability.ServiceInfo{Name: "harvester"}, log)
//	registry.Register(tel)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTask)
//	defer span.End()
//
//	tel.Metrics().TaskFinished(ctx, "ruby", "succeeded", "none", elapsed)
package observability
