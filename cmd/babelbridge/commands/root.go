// Package commands implements the babelbridge CLI.
package commands

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "babelbridge",
		Short:         "Real-time bidirectional speech-translation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTranscriptsCmd())
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
