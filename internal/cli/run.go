package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/harvester/bootstrap"
	"github.com/kbukum/harvester/harness"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/server"
	"github.com/kbukum/harvester/storage"

	// Publish backends register themselves.
	_ "github.com/kbukum/harvester/storage/local"
	_ "github.com/kbukum/harvester/storage/s3"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every task and export the harvested data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)

			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			logger.RegisterDefaults()
			log := logger.Get("cli")

			telemetry := observability.NewTelemetry(cfg.Telemetry, cfg.ServiceInfo(), app.Logger)
			publisher := storage.NewPublisher(cfg.Publish, app.Logger)
			tracker := harness.NewTracker()
			if err := app.RegisterComponent(telemetry); err != nil {
				return err
			}
			if err := app.RegisterComponent(publisher); err != nil {
				return err
			}
			if cfg.Status.Enabled {
				srv := server.New(cfg.Status, app.Logger)
				srv.RegisterEndpoints(cfg.Name, app.Components.HealthAll, tracker.StatusFunc())
				if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
					return err
				}
			}

			var finished bool
			err = app.RunTask(cmd.Context(), func(ctx context.Context) error {
				h := harness.New(*cfg,
					harness.WithLogger(app.Logger),
					harness.WithMetrics(telemetry.Metrics()),
					harness.WithProgress(cmd.OutOrStdout()),
					harness.WithPublisher(publisher),
					harness.WithTracker(tracker),
				)
				report, err := h.Run(ctx)
				if err != nil {
					return err
				}
				finished = true
				return printSummary(cmd.OutOrStdout(), opts.jsonOutput, report.Summary)
			})
			if err != nil && finished {
				log.Warn("shutdown reported errors", logger.ErrorFields("shutdown", err))
				return nil
			}
			return err
		},
	}
	flags.bindRun(cmd)
	return cmd
}
