// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ContextRetriever provides ranked prior-form context for MCP tools.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, ownerID uuid.UUID, query string, k int, opts ...retrieval.AssembleOption) ([]retrieval.ContextEntry, retrieval.Result)
}

// FormLookup provides owner-scoped form retrieval for MCP tools.
type FormLookup interface {
	Get(ctx context.Context, ownerID, formUUID uuid.UUID) (form.Form, error)
}

// Server wraps the MCP server with centralign-specific tools.
type Server struct {
	mcpServer *server.MCPServer
	retriever ContextRetriever
	forms     FormLookup
	version   string
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(retriever ContextRetriever, forms FormLookup, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		retriever: retriever,
		forms:     forms,
		version:   version,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"centralign",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all centralign tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	retrieveTool := mcp.NewTool("retrieve_context",
		mcp.WithDescription("Retrieve a user's prior forms most relevant to a query, for grounding a new form"),
		mcp.WithString("owner_id",
			mcp.Required(),
			mcp.Description("UUID of the user whose forms to search"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language description of the form being built"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of context entries to return (default: 5)"),
		),
		mcp.WithBoolean("include_schemas",
			mcp.Description("Include each form's full schema JSON in the entries"),
		),
	)

	mcpServer.AddTool(retrieveTool, s.handleRetrieveContext)

	getFormTool := mcp.NewTool("get_form",
		mcp.WithDescription("Get a stored form definition by its UUID"),
		mcp.WithString("owner_id",
			mcp.Required(),
			mcp.Description("UUID of the user who owns the form"),
		),
		mcp.WithString("form_uuid",
			mcp.Required(),
			mcp.Description("UUID of the form"),
		),
	)

	mcpServer.AddTool(getFormTool, s.handleGetForm)

	versionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the centralign server version"),
	)

	mcpServer.AddTool(versionTool, s.handleGetVersion)
}

// handleRetrieveContext handles the retrieve_context tool invocation.
func (s *Server) handleRetrieveContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerStr, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id is required"), nil
	}

	ownerID, err := uuid.Parse(ownerStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid owner_id: %s", ownerStr)), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	topK := request.GetInt("top_k", config.DefaultTopK)

	var opts []retrieval.AssembleOption
	if request.GetBool("include_schemas", false) {
		opts = append(opts, retrieval.WithSchemas(true))
	}

	entries, result := s.retriever.RetrieveContext(ctx, ownerID, query, topK, opts...)
	matches := result.Matches()

	type contextEntry struct {
		Category    string   `json:"category"`
		Title       string   `json:"title"`
		Summary     string   `json:"summary"`
		Descriptors []string `json:"descriptors"`
		SchemaJSON  string   `json:"schema_json,omitempty"`
		Similarity  float64  `json:"similarity"`
	}

	type contextResult struct {
		Mode     string         `json:"mode"`
		Fallback bool           `json:"fallback"`
		Entries  []contextEntry `json:"entries"`
	}

	out := contextResult{
		Mode:     string(result.Mode()),
		Fallback: result.IsFallback(),
		Entries:  make([]contextEntry, len(entries)),
	}
	for i, e := range entries {
		out.Entries[i] = contextEntry{
			Category:    e.Category().String(),
			Title:       e.Title(),
			Summary:     e.Summary(),
			Descriptors: e.Descriptors(),
			SchemaJSON:  e.SchemaJSON(),
		}
		// AssembleContext preserves match order, so scores line up by index.
		if i < len(matches) {
			out.Entries[i].Similarity = matches[i].Similarity()
		}
	}

	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetForm handles the get_form tool invocation.
func (s *Server) handleGetForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerStr, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError("owner_id is required"), nil
	}

	ownerID, err := uuid.Parse(ownerStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid owner_id: %s", ownerStr)), nil
	}

	formStr, err := request.RequireString("form_uuid")
	if err != nil {
		return mcp.NewToolResultError("form_uuid is required"), nil
	}

	formUUID, err := uuid.Parse(formStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid form_uuid: %s", formStr)), nil
	}

	if s.forms == nil {
		return mcp.NewToolResultError("form lookup not configured"), nil
	}

	f, err := s.forms.Get(ctx, ownerID, formUUID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("form not found: %s", formStr)), nil
		}
		s.logger.Error("failed to get form", slog.String("form_uuid", formStr), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to get form: %v", err)), nil
	}

	schemaJSON, err := json.Marshal(f.Schema())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal schema: %v", err)), nil
	}

	type formResult struct {
		UUID     string          `json:"uuid"`
		Category string          `json:"category"`
		Summary  string          `json:"summary"`
		Schema   json.RawMessage `json:"schema"`
	}

	result := formResult{
		UUID:     f.UUID().String(),
		Category: f.Category().String(),
		Summary:  f.Summary(),
		Schema:   schemaJSON,
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetVersion handles the get_version tool invocation.
func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

// MCPServer returns the underlying MCP server for stdio or HTTP serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
