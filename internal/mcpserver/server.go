// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Skald authoring tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/pageservice"
	"github.com/halvard/skald/internal/parser"
)

// Server wraps the MCP server with Skald tools.
type Server struct {
	mcp *server.MCPServer
	svc *pageservice.Service
}

// New creates a new MCP server with all Skald tools registered.
func New(svc *pageservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Skald",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages: ledger-confirmed notes merged with local drafts, "+
			"each with its visibility state (draft, scheduled, published, modified)."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the effective page for an id: the local draft when it is "+
			"newer than the confirmed record, the confirmed record otherwise."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id (ledger id or local-... id)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("save_draft",
		mcp.WithDescription("Save a local draft for a page. Content MUST follow the canonical "+
			"page format (YAML frontmatter with title, optional slug/tags/published_at, Markdown "+
			"body). Read the contract first via the get_page_contract tool or the "+
			"skald://page-format resource. Pass an empty id to create a new page."),
		mcp.WithString("id", mcp.Description("Page id; empty creates a new local page")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Skald page format contract")),
	), s.saveDraft)

	s.mcp.AddTool(mcp.NewTool("discard_draft",
		mcp.WithDescription("Discard the local draft for a page, reverting it to its "+
			"ledger-confirmed state."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id")),
	), s.discardDraft)

	s.mcp.AddTool(mcp.NewTool("search_drafts",
		mcp.WithDescription("Full-text search through local draft titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDrafts)

	s.mcp.AddTool(mcp.NewTool("get_page_contract",
		mcp.WithDescription("Returns the canonical Skald page format contract. "+
			"Call this before saving drafts to ensure correct structure."),
	), s.getPageContract)

	// Resource: page format contract.
	s.mcp.AddResource(
		mcp.NewResource("skald://page-format", "Page Format Contract",
			mcp.WithResourceDescription("Canonical Markdown page format that all drafts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}

	res, err := parser.Parse([]byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := res.Fields
	if fields.Slug == "" && fields.Title != "" {
		fields.Slug = models.SanitizeSlug(fields.Title)
	}
	// Validate before creating anything so a rejected save leaves no orphan page.
	if err := fields.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if id == "" {
		view, err := s.svc.NewPage(ctx, models.KindPost)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id = view.Page.ID
	}

	view, err := s.svc.SaveDraft(ctx, id, models.KindPost, fields, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (visibility: %s)", view.Page.ID, view.Visibility)), nil
}

func (s *Server) discardDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DiscardDraft(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("discarded: %s", id)), nil
}

func (s *Server) searchDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var lines []string
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s\t%s", r.Key, r.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getPageContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormatContract), nil
}

func (s *Server) readPageFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "skald://page-format",
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}
