package main

import (
	"os"

	"github.com/spf13/cobra"

	"rmspp/internal/driver"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] file.rms...",
	Short: "Report diagnostics without writing output",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	addPipelineFlags(diagCmd)
}

// runDiag prints diagnostics to stdout and exits non-zero when any file
// has errors. Warnings alone keep the status zero.
func runDiag(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, cfg)
	if err != nil {
		return err
	}
	report, err := readReportOptions(cmd, os.Stdout)
	if err != nil {
		return err
	}
	results, err := driver.ProcessFiles(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.OutOrStdout(), results, report); err != nil {
		return err
	}
	if countFailed(results) > 0 {
		return errFailed
	}
	return nil
}
