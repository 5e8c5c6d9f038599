package cmd

import (
	"github.com/grovetools/core/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for speechprep.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"speechprep",
		"Audio-transcript dataset validation and cleaning",
	)
	// main reports errors so the exit status can follow the error kind.
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
