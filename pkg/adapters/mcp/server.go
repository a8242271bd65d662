// Package mcp exposes the interpreter as a Model Context Protocol server, so
// agent hosts can call interpretation as a tool.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/toodl-app/mind"
	"github.com/toodl-app/mind/pkg/domain"
)

// Engine defines the interface required by the MCP server.
type Engine interface {
	Handle(req *domain.MindRequest) *domain.MindResponse
	ExtractSlots(text string) domain.TokenSlotExtraction
	ModelInfo() mind.ModelInfo
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("mind-mcp", strings.TrimSpace(mind.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: interpret_utterance
	interpretTool := mcp.NewTool("interpret_utterance",
		mcp.WithDescription("Interpret a free-text utterance against the user's data snapshot. Returns one structured intent (add_expense, add_budget_entry or add_flow_task) with a confidence and an editable confirmation message, or a failed status when the request is ambiguous."),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("The free-text request to interpret")),
		mcp.WithString("snapshot", mcp.Description("JSON object with the user's expense groups, budgets and flow plans (optional)")),
		mcp.WithString("context_hints", mcp.Description("JSON object of interpretation hints, e.g. {\"debug\": true} (optional)")),
		mcp.WithOutputSchema[domain.MindResponse](),
	)
	s.mcpServer.AddTool(interpretTool, mcp.NewStructuredToolHandler(s.handleInterpret))

	// TOOL: extract_slots
	slotsTool := mcp.NewTool("extract_slots",
		mcp.WithDescription("Run only the statistical slot tagger over an utterance and return the token predictions and grouped slot spans."),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("The text to tag")),
		mcp.WithOutputSchema[domain.TokenSlotExtraction](),
	)
	s.mcpServer.AddTool(slotsTool, mcp.NewStructuredToolHandler(s.handleExtractSlots))
}

// Handler methods for structured tools

func (s *Server) handleInterpret(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.MindResponse, error) {
	utterance, _ := args["utterance"].(string)
	if strings.TrimSpace(utterance) == "" {
		return domain.MindResponse{}, domain.ErrEmptyUtterance
	}

	req := &domain.MindRequest{Utterance: utterance}

	if snapStr, ok := args["snapshot"].(string); ok && snapStr != "" {
		if err := json.Unmarshal([]byte(snapStr), &req.Snapshot); err != nil {
			return domain.MindResponse{}, fmt.Errorf("invalid snapshot: %w", err)
		}
	}
	if hintsStr, ok := args["context_hints"].(string); ok && hintsStr != "" {
		if err := json.Unmarshal([]byte(hintsStr), &req.ContextHints); err != nil {
			return domain.MindResponse{}, fmt.Errorf("invalid context hints: %w", err)
		}
	}

	return *s.engine.Handle(req), nil
}

func (s *Server) handleExtractSlots(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.TokenSlotExtraction, error) {
	utterance, _ := args["utterance"].(string)
	if strings.TrimSpace(utterance) == "" {
		return domain.TokenSlotExtraction{}, domain.ErrEmptyUtterance
	}
	return s.engine.ExtractSlots(utterance), nil
}

func (s *Server) registerResources() {
	// EXPOSE: mind://model
	s.mcpServer.AddResource(mcp.NewResource("mind://model", "Loaded Model Artifacts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.ModelInfo())
		if err != nil {
			return nil, fmt.Errorf("failed to encode model info: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "mind://model",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
