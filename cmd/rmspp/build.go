package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rmspp/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] file.rms...",
	Short: "Preprocess random map scripts",
	Long: `Build runs the full pipeline over every file and writes the results
into --out-dir under the same base name, or to stdout when no directory is set`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("out-dir", "o", "", "directory for processed scripts (default: stdout)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Bool("cache", false, "reuse results of unchanged files from the disk cache")
	buildCmd.Flags().Bool("with-notes", false, "include diagnostic notes")
	buildCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	addPipelineFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, cfg)
	if err != nil {
		return err
	}
	report, err := readReportOptions(cmd, os.Stderr)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	var results []*driver.Result
	if !quiet && shouldUseTUI(mode) {
		results, err = processWithUI(cmd.Context(), "rmspp build", args, opts)
	} else {
		results, err = driver.ProcessFiles(cmd.Context(), args, opts)
	}
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	for _, r := range results {
		if r.Failed() {
			continue
		}
		if cfg.OutDir == "" {
			if _, err := fmt.Fprintln(stdout, r.Output); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
			continue
		}
		// ошибка уже записана в r.Bag как IO5002
		_, _ = driver.WriteOutput(r, cfg.OutDir)
	}

	if err := printDiagnostics(cmd.ErrOrStderr(), results, report); err != nil {
		return err
	}
	if opts.Timings && !quiet {
		printTimings(cmd.ErrOrStderr(), results)
	}
	if failed := countFailed(results); failed > 0 {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files failed\n", failed, len(results))
		}
		return errFailed
	}
	return nil
}
