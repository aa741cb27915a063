package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quorumlabs/quorum/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print a workflow as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		workflows, err := workflowLoader(cfg)
		if err != nil {
			return err
		}

		workflowID, _ := cmd.Flags().GetString("workflow")
		if workflowID == "" {
			workflowID = cfg.Workflow
		}
		workflow, err := workflows.Get(cmd.Context(), workflowID)
		if err != nil {
			return fmt.Errorf("failed to resolve workflow %q: %w", workflowID, err)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(*workflow, nil))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("workflow", "", "Workflow ID to render (overrides config)")
	rootCmd.AddCommand(graphCmd)
}
