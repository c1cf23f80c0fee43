package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/harvester/bootstrap"
	"github.com/kbukum/harvester/harness"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List task directories without running them",
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
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				h := harness.New(*cfg, harness.WithLogger(app.Logger))
				entries, report, err := h.Inventory(ctx, flags.output)
				if err != nil {
					return err
				}
				if report != nil {
					return printExport(cmd.OutOrStdout(), opts.jsonOutput, report)
				}
				return printInventory(cmd.OutOrStdout(), opts.jsonOutput, entries)
			})
		},
	}
	flags.bindScan(cmd)
	return cmd
}
