package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvard/skald/internal/pageservice"
	"github.com/halvard/skald/internal/testutil"
)

func testServer(t *testing.T) (*Server, *pageservice.Service) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := pageservice.NewService(testutil.TestStore(t), testutil.NewFakeSource(), "0xabc", logger)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_pages":
		result, err = srv.listPages(ctx, req)
	case "read_page":
		result, err = srv.readPage(ctx, req)
	case "save_draft":
		result, err = srv.saveDraft(ctx, req)
	case "discard_draft":
		result, err = srv.discardDraft(ctx, req)
	case "search_drafts":
		result, err = srv.searchDrafts(ctx, req)
	case "get_page_contract":
		result, err = srv.getPageContract(ctx, req)
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

func TestSaveAndReadPage(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "save_draft", map[string]interface{}{
		"content": "---\ntitle: Test Page\n---\n# Test Page\nHello",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "saved: local-") {
		t.Fatalf("save result = %q", text)
	}
	id := strings.Fields(text)[1]

	r = callTool(t, srv, "read_page", map[string]interface{}{"id": id})
	text = resultText(r)
	if !strings.Contains(text, "Test Page") {
		t.Errorf("read result missing title: %q", text)
	}
	if !strings.Contains(text, `"visibility": "draft"`) {
		t.Errorf("read result missing visibility: %q", text)
	}
}

func TestSaveDraftExistingID(t *testing.T) {
	srv, svc := testServer(t)

	view, err := svc.NewPage(context.Background(), "post")
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "save_draft", map[string]interface{}{
		"id":      view.Page.ID,
		"content": "---\ntitle: Updated\n---\nbody",
	})
	if r.IsError {
		t.Fatalf("save error: %q", resultText(r))
	}

	again, err := svc.Load(context.Background(), view.Page.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Page.Fields.Title != "Updated" {
		t.Errorf("title = %q", again.Page.Fields.Title)
	}
}

func TestListPages(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "save_draft", map[string]interface{}{
		"content": "---\ntitle: One\n---\na",
	})

	r := callTool(t, srv, "list_pages", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "One") {
		t.Errorf("list missing page: %q", text)
	}
}

func TestReadPageMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_page", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing page")
	}
}

func TestDiscardDraft(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "save_draft", map[string]interface{}{
		"content": "---\ntitle: Scratch\n---\nx",
	})
	id := strings.Fields(resultText(r))[1]

	r = callTool(t, srv, "discard_draft", map[string]interface{}{"id": id})
	if r.IsError {
		t.Fatalf("discard error: %q", resultText(r))
	}
	r = callTool(t, srv, "read_page", map[string]interface{}{"id": id})
	if !r.IsError {
		t.Error("page should be gone after discarding a local-only draft")
	}
}

func TestSaveDraftInvalidSlugRejected(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "save_draft", map[string]interface{}{
		"content": "---\ntitle: Bad\nslug: Not Valid!\n---\nx",
	})
	if !r.IsError {
		t.Error("expected error for invalid slug")
	}
}

func TestGetPageContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_page_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "published_at") {
		t.Errorf("contract missing scheduling field: %q", text)
	}
}
