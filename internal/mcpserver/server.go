// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Mission Control memory tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/models"
)

const (
	formatURI          = "mission-control://memory-format"
	defaultSearchLimit = 20
)

// Server wraps the MCP server with memory tools.
type Server struct {
	mcp *server.MCPServer
	svc *memoryservice.Service
}

// New creates a new MCP server with all memory tools registered.
func New(svc *memoryservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Mission Control",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_memories",
		mcp.WithDescription("Search memory titles and content. Title matches come first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("category", mcp.Description("Optional category: core, daily, or reference")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 20)")),
	), s.searchMemories)

	s.mcp.AddTool(mcp.NewTool("read_memory",
		mcp.WithDescription("Read the redacted content of a memory by slug or record id."),
		mcp.WithString("slug", mcp.Description("Memory slug, e.g. MEMORY or memory/2026-02-21")),
		mcp.WithString("id", mcp.Description("Record id, used when slug is empty")),
	), s.readMemory)

	s.mcp.AddTool(mcp.NewTool("list_memories",
		mcp.WithDescription("List memories, optionally limited to one category."),
		mcp.WithString("category", mcp.Description("Optional category: core, daily, or reference")),
	), s.listMemories)

	s.mcp.AddTool(mcp.NewTool("sync_memories",
		mcp.WithDescription("Scan the workspace and upsert every markdown file into the memory store."),
	), s.syncMemories)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Memory Format",
			mcp.WithResourceDescription("How workspace files are classified, titled, tagged, and redacted."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func optionalCategory(req mcp.CallToolRequest) (models.Category, error) {
	c, err := req.RequireString("category")
	if err != nil {
		return "", nil
	}
	cat, err := memoryservice.ParseCategory(c)
	if err != nil {
		return "", fmt.Errorf("unknown category %q", c)
	}
	return cat, nil
}

func (s *Server) searchMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := optionalCategory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := defaultSearchLimit
	if n, err := req.RequireInt("limit"); err == nil && n > 0 {
		limit = n
	}

	hits, err := s.svc.Search(ctx, query, category, limit)
	if err != nil {
		return mcp.NewToolResultError("search failed"), nil
	}
	type result struct {
		Slug     string `json:"slug"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Snippet  string `json:"snippet"`
	}
	out := make([]result, len(hits))
	for i, h := range hits {
		out[i] = result{Slug: h.Slug, Title: h.Title, Category: string(h.Category), Snippet: h.Snippet}
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := req.GetString("slug", "")
	id := req.GetString("id", "")

	var (
		m   *models.Memory
		err error
	)
	switch {
	case slug != "":
		m, err = s.svc.Get(ctx, slug)
	case id != "":
		m, err = s.svc.GetByID(ctx, id)
	default:
		return mcp.NewToolResultError("slug or id is required"), nil
	}
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s%s", slug, id)), nil
		}
		return mcp.NewToolResultError("read failed"), nil
	}
	return mcp.NewToolResultText(m.Content), nil
}

func (s *Server) listMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := optionalCategory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.List(ctx, category)
	if err != nil {
		return mcp.NewToolResultError("list failed"), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no memories found"), nil
	}
	lines := make([]string, len(items))
	for i, m := range items {
		lines[i] = fmt.Sprintf("%s\t%s\t%s", m.Slug, m.Category, m.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) syncMemories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Sync(ctx)
	if err != nil {
		return mcp.NewToolResultError("sync failed"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %d, updated: %d, unchanged: %d, total: %d",
		rep.Created, rep.Updated, rep.Unchanged, rep.Total)), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     MemoryFormat,
		},
	}, nil
}
