package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/version"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configFile string
	envFile    string
	jsonOutput bool
}

// NewRootCmd builds the harvester command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "harvester",
		Short:         "Run scraper tasks and collect their data into one workbook",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: search standard locations)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Env file loaded before HARVESTER_ variables are read")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newRunCmd(opts),
		newScanCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit
// status. Per-task failures never fail the command; a discovery failure, a
// fatal export failure, invalid configuration or a usage error does.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

// describe renders err for the terminal, with the error code when known.
func describe(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return "harvester: " + appErr.Error()
	}
	return "Error: " + err.Error()
}
