package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rmspp/internal/driver"
	"rmspp/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] file.rms...",
	Short: "Rebuild scripts whenever they change",
	Long: `Watch builds every file once and then rebuilds the files that change
until interrupted. Output goes to --out-dir, or to stdout when it is empty`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("out-dir", "o", "", "directory for processed scripts (default: stdout)")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a rebuild")
	addPipelineFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	stderr := cmd.ErrOrStderr()

	w, err := watch.New(args, watch.Options{
		Debounce: debounce,
		OnError:  func(err error) { fmt.Fprintf(stderr, "watch: %v\n", err) },
	})
	if err != nil {
		return err
	}

	rebuild := func(paths []string) {
		start := time.Now()
		results, err := driver.ProcessFiles(cmd.Context(), paths, opts)
		if err != nil {
			return
		}
		for _, r := range results {
			if r.Failed() {
				continue
			}
			if cfg.OutDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), r.Output)
				continue
			}
			_, _ = driver.WriteOutput(r, cfg.OutDir)
		}
		_ = printDiagnostics(stderr, results, report)
		if !quiet {
			fmt.Fprintf(stderr, "[%s] rebuilt %d file(s), %d failed, %s\n",
				time.Now().Format(time.TimeOnly), len(results), countFailed(results),
				time.Since(start).Round(time.Millisecond))
		}
	}

	rebuild(args)
	if !quiet {
		fmt.Fprintf(stderr, "watching %d file(s), press Ctrl+C to stop\n", len(args))
	}
	return w.Run(cmd.Context(), rebuild)
}
