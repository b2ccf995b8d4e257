package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rmspp/internal/prof"
)

var profileStop []func()

// setupProfiling starts the profiles requested by --cpuprofile,
// --runtime-trace and --memprofile. The heap profile is written on exit.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpu, _ := flags.GetString("cpuprofile")
	mem, _ := flags.GetString("memprofile")
	rt, _ := flags.GetString("runtime-trace")

	if cpu != "" {
		if err := prof.StartCPU(cpu); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		profileStop = append(profileStop, prof.StopCPU)
	}
	if rt != "" {
		if err := prof.StartTrace(rt); err != nil {
			return fmt.Errorf("failed to start runtime trace: %w", err)
		}
		profileStop = append(profileStop, prof.StopTrace)
	}
	if mem != "" {
		stderr := cmd.ErrOrStderr()
		profileStop = append(profileStop, func() {
			if err := prof.WriteMem(mem); err != nil {
				fmt.Fprintf(stderr, "memprofile: %v\n", err)
			}
		})
	}
	return nil
}

func stopProfiling() {
	for i := len(profileStop) - 1; i >= 0; i-- {
		profileStop[i]()
	}
	profileStop = nil
}
