package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: "Quorum streams multi-stage deliberation workflows",
	Long: `Quorum submits a message to a multi-stage deliberation workflow,
consumes the live progress stream, and presents the run as a transcript
and as a workflow graph.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("endpoint", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
