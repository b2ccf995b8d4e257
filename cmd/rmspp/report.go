package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rmspp/internal/diag"
	"rmspp/internal/diagfmt"
	"rmspp/internal/driver"
)

type reportOptions struct {
	format    string // pretty|json|short
	withNotes bool
	pathMode  diagfmt.PathMode
	color     bool
}

func readReportOptions(cmd *cobra.Command, out *os.File) (reportOptions, error) {
	opts := reportOptions{format: "pretty", color: useColor(cmd, out)}
	if f := cmd.Flags().Lookup("format"); f != nil {
		opts.format = f.Value.String()
	}
	switch opts.format {
	case "pretty", "json", "short":
	default:
		return opts, fmt.Errorf("unknown format %q (expected pretty|json|short)", opts.format)
	}
	if f := cmd.Flags().Lookup("with-notes"); f != nil {
		opts.withNotes = f.Value.String() == "true"
	}
	if f := cmd.Flags().Lookup("path-mode"); f != nil {
		mode, ok := diagfmt.ParsePathMode(f.Value.String())
		if !ok {
			return opts, fmt.Errorf("unknown path mode %q (expected auto|absolute|relative|basename)", f.Value.String())
		}
		opts.pathMode = mode
	}
	return opts, nil
}

// printDiagnostics renders the diagnostics of every result. JSON output
// merges all documents into one object.
func printDiagnostics(w io.Writer, results []*driver.Result, opts reportOptions) error {
	switch opts.format {
	case "json":
		merged := diagfmt.DiagnosticsOutput{Diagnostics: []diagfmt.DiagnosticJSON{}}
		for _, r := range results {
			if r == nil {
				continue
			}
			out := diagfmt.BuildDiagnosticsOutput(r.Diagnostics(), r.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         opts.pathMode,
				IncludeNotes:     opts.withNotes,
			})
			merged.Diagnostics = append(merged.Diagnostics, out.Diagnostics...)
		}
		merged.Count = len(merged.Diagnostics)
		return diagfmt.Encode(w, merged)
	case "short":
		for _, r := range results {
			if r == nil {
				continue
			}
			if s := diag.FormatShortDiagnostics(r.Diagnostics(), r.FileSet, opts.withNotes); s != "" {
				if _, err := fmt.Fprintln(w, s); err != nil {
					return err
				}
			}
		}
	default:
		for _, r := range results {
			if r == nil {
				continue
			}
			diagfmt.PrettyItems(w, r.Diagnostics(), r.FileSet, diagfmt.PrettyOpts{
				Color:     opts.color,
				Context:   1,
				PathMode:  opts.pathMode,
				ShowNotes: opts.withNotes,
			})
		}
	}
	return nil
}

func countFailed(results []*driver.Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

func printTimings(w io.Writer, results []*driver.Result) {
	for _, r := range results {
		if r == nil || len(r.Timing.Phases) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s", r.Path, r.Timing.Summary())
	}
}
