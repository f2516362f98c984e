package main

// Root command for the offline snapshot CLI.
// Runs the same snapshot pipeline as the Discord bot without a gateway.

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "snapshot-cli",
		Short: "Take holder snapshots of Cardano policies from the terminal",
		Long: `snapshot-cli pages through the holders listing API for a policy and writes
the same report the Discord bot attaches to its /snap reply.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSnapCmd())
	return root
}
