// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes tagvault tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tagvault/internal/apperr"
	"github.com/starford/tagvault/internal/tagservice"
)

// FormatResourceURI identifies the tagged-section format resource.
const FormatResourceURI = "tagvault://tag-format"

// Server wraps the MCP server with tagvault tools.
type Server struct {
	mcp *server.MCPServer
	svc tagservice.Vault
}

// New creates a new MCP server with all tagvault tools registered.
func New(svc tagservice.Vault, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"tagvault",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag used in the vault, in first-seen order, "+
			"with the number of sections and files carrying it."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_tag_content",
		mcp.WithDescription("Return every section tagged with the given tag across all notes, "+
			"oldest document first. Each entry has date (for YYYY-MM-DD.md notes), filePath and content."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag such as #work (the leading # may be omitted)")),
	), s.getTagContent)

	s.mcp.AddTool(mcp.NewTool("delete_tag_content",
		mcp.WithDescription("Delete every section tagged with the given tag, and its tag line, "+
			"from every note in the vault. Other sections are left untouched. "+
			"This rewrites files on disk; pass confirm=true to proceed."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag such as #work (the leading # may be omitted)")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to delete")),
	), s.deleteTagContent)

	s.mcp.AddTool(mcp.NewTool("parse_note",
		mcp.WithDescription("Parse a single note into its tagged sections."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. daily/2024-01-15.md)")),
	), s.parseNote)

	s.mcp.AddTool(mcp.NewTool("search_sections",
		mcp.WithDescription("Full-text search over tagged sections."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchSections)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the tagged-section note format. "+
			"Call this before writing notes that should be picked up by the tag index."),
	), s.getFormatContract)

	// Resource: tagged-section format contract.
	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Tagged Section Format",
			mcp.WithResourceDescription("How tag lines, section bodies and separators are written in notes."),
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

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a service error into a tool error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrInvalidTag):
		return mcp.NewToolResultError("invalid tag: tags look like #name, using letters, digits and '-'")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func normalizeTag(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	return raw
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.svc.Summaries(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	return jsonResult(summaries)
}

func (s *Server) getTagContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.GetContent(ctx, normalizeTag(raw))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(entries)
}

func (s *Server) deleteTagContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag := normalizeTag(raw)
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError(fmt.Sprintf("refusing to delete %s without confirm=true", tag)), nil
	}
	report, err := s.svc.DeleteContent(ctx, tag)
	if err != nil {
		if len(report.FilesModified) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("deleted %d sections from %d files, but: %v",
				report.SectionsDeleted, len(report.FilesModified), err)), nil
		}
		return toolError(err), nil
	}
	return jsonResult(report)
}

func (s *Server) parseNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Note(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return toolError(err), nil
	}
	return jsonResult(note)
}

func (s *Server) searchSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := int(req.GetFloat("limit", 20))
	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TagFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     TagFormatContract,
		},
	}, nil
}
