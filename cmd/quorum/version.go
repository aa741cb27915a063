package main

import (
	"fmt"

	"github.com/spf13/cobra"

	quorum "github.com/quorumlabs/quorum"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quorum version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "quorum", quorum.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
