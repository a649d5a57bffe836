// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the vault note operations for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/frontmatter"
	"github.com/starford/laguz/internal/noteservice"
)

// Server wraps the MCP server with the Laguz vault tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all vault tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note. Fails if the path is taken. "+
			"Read the note format first via the get_note_contract tool or the "+
			"laguz://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new note (e.g. folder/note.md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body text")),
		mcp.WithObject("metadata", mcp.Description("Optional frontmatter mapping (e.g. {\"tags\": [\"x\"]})")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("edit_note",
		mcp.WithDescription("Replace a note's body. With update_metadata=true the content is "+
			"parsed for an embedded frontmatter block that is merged over the existing "+
			"metadata; otherwise the existing metadata is kept untouched."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
		mcp.WithBoolean("update_metadata", mcp.Description("Merge frontmatter embedded in content (default false)")),
	), s.editNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a single note. Directories are never removed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("move_note",
		mcp.WithDescription("Rename a note, preserving its content byte-for-byte. "+
			"Fails if the destination exists."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Current note path")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("New note path")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note: its metadata and body."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("get_note_metadata",
		mcp.WithDescription("Return only a note's frontmatter mapping."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.getNoteMetadata)

	s.mcp.AddTool(mcp.NewTool("search_vault",
		mcp.WithDescription("Substring search across note bodies, line by line. "+
			"Results are in vault traversal order with 1-based line numbers."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
		mcp.WithString("folder", mcp.Description("Restrict the search to a subfolder")),
		mcp.WithBoolean("include_frontmatter", mcp.Description("Also match frontmatter lines (default false)")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Disable case folding (default false)")),
	), s.searchVault)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List markdown note paths in a folder."),
		mcp.WithString("folder", mcp.Description("Folder to list (empty for the vault root)")),
		mcp.WithBoolean("recursive", mcp.Description("Walk the whole subtree (default false)")),
		mcp.WithString("pattern", mcp.Description("Optional glob filter, e.g. projects/**/*.md")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_vault_structure",
		mcp.WithDescription("Return the folder/note tree of the vault or a subfolder. "+
			"Non-markdown files are excluded."),
		mcp.WithString("folder", mcp.Description("Subfolder to start from (empty for the vault root)")),
	), s.getVaultStructure)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("laguz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes should follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

// result marshals v as an indented-JSON tool result.
func result(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a domain error into an invalid-request tool result.
// Anything outside the taxonomy escalates as a protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidPath),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrMetadataParse),
		errors.Is(err, apperr.ErrIO):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var meta *frontmatter.Map
	if raw, ok := req.GetArguments()["metadata"]; ok && raw != nil {
		obj, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("metadata must be an object"), nil
		}
		meta = frontmatter.FromMap(obj)
	}

	note, err := s.svc.CreateNote(ctx, path, content, meta)
	if err != nil {
		return toolError(err)
	}
	return result(note)
}

func (s *Server) editNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updateMetadata := req.GetBool("update_metadata", false)

	note, err := s.svc.EditNote(ctx, path, content, updateMetadata)
	if err != nil {
		return toolError(err)
	}
	return result(note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteNote(ctx, path); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", path)), nil
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.MoveNote(ctx, source, destination); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved: %s -> %s", source, destination)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return toolError(err)
	}
	return result(note)
}

func (s *Server) getNoteMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.svc.GetMetadata(ctx, path)
	if err != nil {
		return toolError(err)
	}
	return result(meta)
}

func (s *Server) searchVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Search(ctx, noteservice.SearchOptions{
		Query:              query,
		Folder:             req.GetString("folder", ""),
		IncludeFrontmatter: req.GetBool("include_frontmatter", false),
		CaseSensitive:      req.GetBool("case_sensitive", false),
	})
	if err != nil {
		return toolError(err)
	}
	return result(report)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := s.svc.ListNotes(ctx, noteservice.ListOptions{
		Folder:    req.GetString("folder", ""),
		Recursive: req.GetBool("recursive", false),
		Pattern:   req.GetString("pattern", ""),
	})
	if err != nil {
		return toolError(err)
	}
	return result(paths)
}

func (s *Server) getVaultStructure(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.svc.VaultStructure(ctx, req.GetString("folder", ""))
	if err != nil {
		return toolError(err)
	}
	return result(tree)
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
