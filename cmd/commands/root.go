package commands

// Root command for the Cobra CLI. Registers the scan and monitor
// subcommands.

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trustline-monitor",
	Short: "Trustline Monitor - ranked holder list for a single ledger token",
	Long: `Trustline Monitor scans all trustlines held against one token issuer,
aggregates them into a ranked, tiered holder list, and can keep that list
fresh by rescanning on a fixed cooldown.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)
}
