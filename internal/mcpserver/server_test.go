package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yuhungliao/mission-control/internal/memoryservice"
	"github.com/yuhungliao/mission-control/internal/redact"
	"github.com/yuhungliao/mission-control/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir, store := testutil.TestWorkspace(t)
	db := testutil.TestDB(t)
	svc := memoryservice.NewService(store, db, redact.New(), testutil.Logger())
	return New(svc, "test"), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_memories":
		result, err = srv.searchMemories(ctx, req)
	case "read_memory":
		result, err = srv.readMemory(ctx, req)
	case "list_memories":
		result, err = srv.listMemories(ctx, req)
	case "sync_memories":
		result, err = srv.syncMemories(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seed(t *testing.T, srv *Server, dir string) {
	t.Helper()
	testutil.WriteFile(t, dir, "MEMORY.md", "# Memory\nserver at 10.0.0.7\nuniqueword")
	testutil.WriteFile(t, dir, "memory/2026-02-21.md", "# Friday\nshipped")
	r := callTool(t, srv, "sync_memories", map[string]interface{}{})
	if got := resultText(r); got != "created: 2, updated: 0, unchanged: 0, total: 2" {
		t.Fatalf("sync result = %q", got)
	}
}

func TestReadMemory_Redacted(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, srv, dir)

	r := callTool(t, srv, "read_memory", map[string]interface{}{"slug": "MEMORY"})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, "[REDACTED]") || strings.Contains(text, "10.0.0.7") {
		t.Errorf("read result = %q", text)
	}
}

func TestReadMemoryByID(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, srv, dir)

	m, err := srv.svc.Get(context.Background(), "MEMORY")
	if err != nil {
		t.Fatal(err)
	}
	r := callTool(t, srv, "read_memory", map[string]interface{}{"id": m.ID})
	if r.IsError || resultText(r) != m.Content {
		t.Errorf("read by id = %q", resultText(r))
	}

	r = callTool(t, srv, "read_memory", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without slug or id")
	}
}

func TestReadMemoryMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_memory", map[string]interface{}{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing memory")
	}
}

func TestListMemories(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, srv, dir)

	r := callTool(t, srv, "list_memories", map[string]interface{}{})
	if lines := strings.Split(resultText(r), "\n"); len(lines) != 2 {
		t.Errorf("list = %q", resultText(r))
	}

	r = callTool(t, srv, "list_memories", map[string]interface{}{"category": "daily"})
	if text := resultText(r); !strings.HasPrefix(text, "memory/2026-02-21\tdaily\tFriday") {
		t.Errorf("daily list = %q", text)
	}

	r = callTool(t, srv, "list_memories", map[string]interface{}{"category": "bogus"})
	if !r.IsError {
		t.Error("expected error for unknown category")
	}
}

func TestSearchMemories(t *testing.T) {
	srv, dir := testServer(t)
	seed(t, srv, dir)

	r := callTool(t, srv, "search_memories", map[string]interface{}{"query": "uniqueword"})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, `"slug": "MEMORY"`) {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_memories", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without query")
	}
}

func TestListMemories_Empty(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_memories", map[string]interface{}{})
	if resultText(r) != "no memories found" {
		t.Errorf("empty list = %q", resultText(r))
	}
}
