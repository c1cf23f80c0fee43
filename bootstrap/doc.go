// Package bootstrap runs a harvester command inside a uniform lifecycle:
// validated config, logger, registered components, hooks, and signal-driven
// cancellation of a finite task.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(telemetry)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return harness.Run(ctx)
//	})
package bootstrap
