package main

import (
	"github.com/spf13/cobra"
)

// runOneShot runs a single session command without persisting the creature.
func runOneShot(cmd *cobra.Command, line string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a := newApp(workspace, cfg, cmd.OutOrStdout())
	defer a.close()

	a.dispatcher(a.loadCreature(), true).Dispatch(ctx, line)
	return nil
}

// runStatus shows energy, cash, wallet and level.
func runStatus(cmd *cobra.Command, args []string) error {
	return runOneShot(cmd, "status")
}

// runDiagnose lists models and probes the quote endpoint.
func runDiagnose(cmd *cobra.Command, args []string) error {
	return runOneShot(cmd, "diagnostico")
}

// runUsage prints token accounting.
func runUsage(cmd *cobra.Command, args []string) error {
	return runOneShot(cmd, "uso")
}
