package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rmspp/internal/diag"
	"rmspp/internal/driver"
	"rmspp/internal/project"
)

// loadConfig reads --config or the nearest rmspp.toml/rmspp.yaml and lets
// command-line flags override it.
func loadConfig(cmd *cobra.Command) (project.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg project.Config
	if path != "" {
		cfg, err = project.Load(path)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return project.Config{}, fmt.Errorf("failed to get working directory: %w", wdErr)
		}
		cfg, err = project.Discover(wd)
	}
	if err != nil {
		return project.Config{}, fmt.Errorf("%s: %w", diag.CfgInvalid.ID(), err)
	}

	if n, _ := flags.GetInt("max-diagnostics"); n > 0 {
		cfg.MaxDiagnostics = n
	}
	local := cmd.Flags()
	if local.Changed("jobs") {
		cfg.Jobs, _ = local.GetInt("jobs")
	}
	if local.Changed("out-dir") {
		cfg.OutDir, _ = local.GetString("out-dir")
	}
	if local.Changed("cache") {
		cfg.Cache, _ = local.GetBool("cache")
	}
	if local.Changed("area-base") {
		cfg.AreaBase, _ = local.GetInt("area-base")
	}
	if local.Changed("hoist-prefix") {
		cfg.HoistPrefix, _ = local.GetString("hoist-prefix")
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, fmt.Errorf("%s: %w", diag.CfgInvalid.ID(), err)
	}
	return cfg, nil
}

// addPipelineFlags registers the flags shared by build, diag and watch.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max parallel workers (0 = number of CPUs)")
	cmd.Flags().Int("area-base", 0, "first ID given to named actor areas")
	cmd.Flags().String("hoist-prefix", "", "prefix of hoisted rnd constants")
}

// driverOptions builds driver options from cfg and the persistent flags.
func driverOptions(cmd *cobra.Command, cfg project.Config) (driver.Options, error) {
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	opts := driver.Options{Config: cfg, Timings: timings}
	if cfg.Cache {
		cache, err := driver.OpenDiskCache("rmspp")
		if err != nil {
			return opts, fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}
