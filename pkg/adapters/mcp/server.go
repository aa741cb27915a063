// Package mcp exposes the Quorum engine as an MCP server, so agent
// hosts can run deliberation sends and inspect workflow graphs as
// tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	quorum "github.com/quorumlabs/quorum"
	"github.com/quorumlabs/quorum/internal/presentation/graph"
	"github.com/quorumlabs/quorum/pkg/domain"
)

// Engine is the slice of the Quorum client the MCP tools need.
type Engine interface {
	Send(ctx context.Context, req quorum.SendRequest, ls *quorum.Listeners) (*quorum.SendResult, error)
	Workflow(ctx context.Context, id string) (*domain.Workflow, error)
}

// Server wraps the engine as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("quorum-mcp", quorum.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a message through a deliberation workflow and return the synthesized answer."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The message to deliberate on.")),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow definition to execute.")),
		mcp.WithString("conversation_id", mcp.Description("Existing conversation to continue; omitted starts a new one.")),
	)
	s.mcpServer.AddTool(sendTool, s.handleSendMessage)

	graphTool := mcp.NewTool("render_graph",
		mcp.WithDescription("Render a workflow graph as a Mermaid flowchart."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow definition to render.")),
	)
	s.mcpServer.AddTool(graphTool, s.handleRenderGraph)
}

func (s *Server) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conversationID := req.GetString("conversation_id", "")

	result, err := s.engine.Send(ctx, quorum.SendRequest{
		ConversationID: conversationID,
		WorkflowID:     workflowID,
		Content:        content,
	}, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("send failed: %v", err)), nil
	}

	for _, stageErr := range result.StageErrors {
		return mcp.NewToolResultError(fmt.Sprintf("workflow reported a stage failure: %v", stageErr)), nil
	}

	idx := result.Conversation.LastAssistant()
	if idx >= 0 {
		if synthesis := result.Conversation.Messages[idx].Synthesis; synthesis != nil {
			return mcp.NewToolResultText(synthesis.Content), nil
		}
	}

	// No synthesized answer; return the structured result instead.
	payload, err := json.Marshal(result.Conversation)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode conversation: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleRenderGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workflow, err := s.engine.Workflow(ctx, workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve workflow: %v", err)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(*workflow, nil)), nil
}
