package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/harvester/config"
	"github.com/kbukum/harvester/deps"
	"github.com/kbukum/harvester/export"
	"github.com/kbukum/harvester/harness"
)

// envPrefix scopes environment overrides, e.g. HARVESTER_BOOTSTRAP_POLICY.
const envPrefix = "HARVESTER"

func loadConfig(opts *globalOptions) (*harness.Config, error) {
	cfg := &harness.Config{}
	loaderOpts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}
	if err := config.LoadConfig("harvester", cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// taskFlags are the flags that override file and env values. Only flags set
// on the command line are applied.
type taskFlags struct {
	root        string
	limit       int
	timeout     time.Duration
	concurrency int
	strict      bool
	output      string
	only        []string
	statusPort  int
}

func (f *taskFlags) bindRun(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.root, "root", "", "Directory holding one subdirectory per task")
	fs.IntVar(&f.limit, "limit", 0, "Run at most N runnable tasks (0 runs all)")
	fs.DurationVar(&f.timeout, "timeout", 0, "Wall-clock budget per task")
	fs.IntVar(&f.concurrency, "concurrency", 0, "Tasks processed at once")
	fs.BoolVar(&f.strict, "strict", false, "Skip tasks whose dependency bootstrap failed")
	fs.StringVar(&f.output, "output", "", "Workbook path")
	fs.StringSliceVar(&f.only, "only", nil, "Run only the named tasks (comma-separated)")
	fs.IntVar(&f.statusPort, "status-port", 0, "Serve /status on this port while the run progresses")
}

func (f *taskFlags) bindScan(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.root, "root", "", "Directory holding one subdirectory per task")
	fs.StringVar(&f.output, "output", "", "Write the inventory to this path instead of printing it")
}

func (f *taskFlags) apply(cmd *cobra.Command, cfg *harness.Config) {
	changed := cmd.Flags().Changed
	if changed("root") {
		cfg.Root = f.root
	}
	if changed("limit") {
		cfg.Limit = f.limit
	}
	if changed("timeout") {
		cfg.Executor.Timeout = f.timeout
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("strict") {
		cfg.Bootstrap.Policy = deps.PolicyLenient
		if f.strict {
			cfg.Bootstrap.Policy = deps.PolicyStrict
		}
	}
	if changed("output") {
		if cmd.Name() == "run" {
			cfg.Output.Path = f.output
		}
		if strings.EqualFold(filepath.Ext(f.output), ".csv") {
			cfg.Output.Format = export.FormatCSV
		}
	}
	if changed("only") {
		cfg.Only = f.only
	}
	if changed("status-port") {
		cfg.Status.Enabled = true
		cfg.Status.Port = f.statusPort
	}
}
