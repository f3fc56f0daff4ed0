package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "crowdstream",
	Short: "Crowd-voted trading engine",
	Long: `Crowdstream runs chat-driven stock trading rounds: viewers vote in
timed elections for the next trade, the winning command is validated against
live broker data, and personal wallet orders are checked and executed the
moment they arrive.

Votes are ingested over HTTP, persisted per election round, and tallied when
the round expires.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
