package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	quorum "github.com/quorumlabs/quorum"
	"github.com/quorumlabs/quorum/internal/presentation/tui"
	"github.com/quorumlabs/quorum/pkg/domain"
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message through a workflow and print the synthesized answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd)

		client, err := buildClient(cmd, cfg, logger)
		if err != nil {
			return err
		}

		workflowID, _ := cmd.Flags().GetString("workflow")
		if workflowID == "" {
			workflowID = cfg.Workflow
		}
		conversationID, _ := cmd.Flags().GetString("conversation")

		listeners := &quorum.Listeners{
			OnEvent: func(ev domain.ProtocolEvent) {
				switch ev.Kind {
				case domain.EventStageStart:
					fmt.Fprintf(cmd.ErrOrStderr(), "stage %s running...\n", ev.StageID)
				case domain.EventStageComplete:
					fmt.Fprintf(cmd.ErrOrStderr(), "stage %s done\n", ev.StageID)
				}
			},
			OnStageError: func(stageErr *domain.StageError) {
				fmt.Fprintf(cmd.ErrOrStderr(), "stage %s failed: %s\n", stageErr.StageID, stageErr.Message)
			},
		}

		result, err := client.Send(cmd.Context(), quorum.SendRequest{
			ConversationID: conversationID,
			WorkflowID:     workflowID,
			Content:        strings.Join(args, " "),
		}, listeners)
		if err != nil {
			return err
		}
		if len(result.StageErrors) > 0 {
			return fmt.Errorf("workflow finished with %d failed stage(s)", len(result.StageErrors))
		}

		return printAnswer(cmd, result)
	},
}

// printAnswer renders the synthesized markdown, styled when stdout is an
// interactive terminal.
func printAnswer(cmd *cobra.Command, result *quorum.SendResult) error {
	idx := result.Conversation.LastAssistant()
	if idx < 0 || result.Conversation.Messages[idx].Synthesis == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "no synthesized answer in the stream")
		return nil
	}
	answer := result.Conversation.Messages[idx].Synthesis.Content

	if tui.Interactive() {
		render := tui.NewRenderer()
		styled, err := render(answer)
		if err == nil {
			fmt.Fprint(os.Stdout, styled)
			return nil
		}
	}
	fmt.Fprintln(os.Stdout, answer)
	return nil
}

func init() {
	sendCmd.Flags().String("workflow", "", "Workflow ID to execute (overrides config)")
	sendCmd.Flags().String("conversation", "", "Conversation ID to continue; empty starts a new one")
	rootCmd.AddCommand(sendCmd)
}
