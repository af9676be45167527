// Package mcp exposes Kinoflow playback to MCP clients. Tools cover the
// visitor-facing flow (start a conversation, submit answers) plus graph
// introspection; authoring stays on the HTTP surface.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kinoflow/kinoflow/internal/runtime"
	"github.com/kinoflow/kinoflow/pkg/domain"
	"github.com/kinoflow/kinoflow/pkg/session"
)

// StepView is what a client needs to present a step to the visitor.
type StepView struct {
	Session   string                 `json:"session" jsonschema_description:"Session identifier"`
	Completed bool                   `json:"completed" jsonschema_description:"Whether the conversation has ended"`
	Step      *domain.Node           `json:"step,omitempty" jsonschema_description:"The step to present, absent when the conversation ended"`
	Outcome   *domain.Outcome        `json:"outcome,omitempty" jsonschema_description:"How the previous answer resolved"`
	Answers   []domain.AnswerRecord  `json:"answers,omitempty" jsonschema_description:"Answers recorded so far"`
}

// Server exposes one graph's playback over MCP.
type Server struct {
	graph     *domain.Graph
	engine    *runtime.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server for the graph, persisting sessions
// through the manager.
func NewServer(g *domain.Graph, sessions *session.Manager, version string, opts ...runtime.EngineOption) *Server {
	s := &Server{
		graph:     g,
		engine:    runtime.NewEngine(g, opts...),
		sessions:  sessions,
		mcpServer: server.NewMCPServer("kinoflow-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: inspect_graph
	s.mcpServer.AddTool(mcp.NewTool("inspect_graph",
		mcp.WithDescription("Get the full conversation graph for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.graph)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: start_conversation
	startTool := mcp.NewTool("start_conversation",
		mcp.WithDescription("Start a new conversation session, returning the first step."),
		mcp.WithOutputSchema[StepView](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: submit_answer
	submitTool := mcp.NewTool("submit_answer",
		mcp.WithDescription("Submit the visitor's answer for the session's current step and advance."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_conversation")),
		mcp.WithString("value", mcp.Description("Answer value: option text, button text, free text, or a date")),
		mcp.WithString("channel", mcp.Description("Response channel for open-ended steps: video, audio or text")),
		mcp.WithString("score", mcp.Description("NPS score 0-10")),
		mcp.WithString("skipped", mcp.Description("Set to 'true' when the visitor skipped the step")),
		mcp.WithOutputSchema[StepView](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmit))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepView, error) {
	state := s.engine.Start(ctx)
	if err := s.sessions.Save(ctx, state.SessionID, state); err != nil {
		return StepView{}, fmt.Errorf("session save failed: %w", err)
	}
	return s.view(state, nil), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepView, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return StepView{}, fmt.Errorf("session_id is required")
	}

	ans := answerFromArgs(args)

	var viewOut StepView
	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		outcome, err := s.engine.SubmitAnswer(ctx, state, ans)
		if err != nil {
			return err
		}
		if err := s.sessions.Store().Save(ctx, sessionID, state); err != nil {
			return err
		}
		viewOut = s.view(state, &outcome)
		return nil
	})
	if err != nil {
		return StepView{}, err
	}
	return viewOut, nil
}

func answerFromArgs(args map[string]interface{}) domain.Answer {
	if skipped, _ := args["skipped"].(string); skipped == "true" {
		return domain.Skip()
	}
	var ans domain.Answer
	if value, ok := args["value"].(string); ok {
		ans.Value = value
	}
	if channel, ok := args["channel"].(string); ok {
		ans.Channel = channel
	}
	if scoreStr, ok := args["score"].(string); ok && scoreStr != "" {
		var score int
		if _, err := fmt.Sscanf(scoreStr, "%d", &score); err == nil {
			ans.NPSScore = &score
		}
	}
	return ans
}

func (s *Server) view(state *domain.SessionState, outcome *domain.Outcome) StepView {
	v := StepView{
		Session:   state.SessionID,
		Completed: state.Completed,
		Outcome:   outcome,
		Answers:   state.Answers,
	}
	if !state.Completed {
		v.Step = s.graph.NodeByID(state.CurrentNodeID)
	}
	return v
}

func (s *Server) registerResources() {
	// EXPOSE: kinoflow://graph
	s.mcpServer.AddResource(mcp.NewResource("kinoflow://graph", "Conversation Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.graph)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "kinoflow://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
