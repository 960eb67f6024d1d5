package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools declares the fixed tool surface. Handlers return domain
// failures as tool errors, never as protocol errors, so the client always
// sees the classified message.
func (s *Server) registerTools() {
	readTool := mcp.NewTool("read_file",
		mcp.WithDescription("Read a file from the workspace. Paths are relative to the workspace root."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Workspace-relative path to the file"),
		),
		mcp.WithBoolean("allow_denied",
			mcp.Description("Bypass the sensitive-path denylist (the bypass is audited)"),
		),
	)
	s.server.AddTool(readTool, s.handleReadFile)

	listTool := mcp.NewTool("list_files",
		mcp.WithDescription("List workspace files matching a glob pattern"),
		mcp.WithString("base",
			mcp.Description("Directory to list from (defaults to the workspace root)"),
		),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern, e.g. **/*.go (defaults to **/*)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Cap on returned paths"),
		),
		mcp.WithBoolean("include_denied",
			mcp.Description("Include denylisted paths in the listing"),
		),
	)
	s.server.AddTool(listTool, s.handleListFiles)

	writeTool := mcp.NewTool("write_file",
		mcp.WithDescription("Write a file in the workspace. With require_confirmation a preview is returned and nothing is written."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Workspace-relative path to write"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Content to write"),
		),
		mcp.WithString("mode",
			mcp.Description("replace, append, or create (create fails if the file exists)"),
		),
		mcp.WithBoolean("require_confirmation",
			mcp.Description("Return a write preview instead of applying (default true)"),
		),
		mcp.WithBoolean("create_dirs",
			mcp.Description("Create missing parent directories (default true)"),
		),
	)
	s.server.AddTool(writeTool, s.handleWriteFile)

	runTool := mcp.NewTool("run_command",
		mcp.WithDescription("Run a whitelisted command in the workspace root. Shell metacharacters are rejected."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Full command text, e.g. 'git status'"),
		),
		mcp.WithNumber("timeout_s",
			mcp.Description("Seconds before the process is killed"),
		),
	)
	s.server.AddTool(runTool, s.handleRunCommand)

	searchTool := mcp.NewTool("search_code",
		mcp.WithDescription("Regex search across workspace files"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Regular expression to search for"),
		),
		mcp.WithString("file_glob",
			mcp.Description("Glob filter on files to search (defaults to **/*)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Cap on returned hits"),
		),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of context around each hit"),
		),
	)
	s.server.AddTool(searchTool, s.handleSearchCode)

	diagTool := mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Report limits, policy, context usage, and recent command outcomes"),
	)
	s.server.AddTool(diagTool, s.handleDiagnostics)

	resetTool := mcp.NewTool("reset_context",
		mcp.WithDescription("Zero the context budget and clear all rate-limiter windows"),
	)
	s.server.AddTool(resetTool, s.handleResetContext)
}

func (s *Server) handleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	allowDenied := request.GetBool("allow_denied", false)

	content, err := s.gateway.ReadFile(ctx, path, allowDenied)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	base := request.GetString("base", ".")
	pattern := request.GetString("pattern", "")
	maxResults := request.GetInt("max_results", 0)
	includeDenied := request.GetBool("include_denied", false)

	files, err := s.gateway.ListFiles(ctx, base, pattern, maxResults, includeDenied)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"files": files, "count": len(files)})
}

func (s *Server) handleWriteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := request.GetString("mode", "")
	requireConfirmation := request.GetBool("require_confirmation", true)
	createDirs := request.GetBool("create_dirs", true)

	res, err := s.gateway.WriteFile(ctx, path, content, mode, requireConfirmation, createDirs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleRunCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commandText, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeout := time.Duration(request.GetInt("timeout_s", 0)) * time.Second

	res, err := s.gateway.RunCommand(ctx, commandText, timeout)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileGlob := request.GetString("file_glob", "")
	maxResults := request.GetInt("max_results", 0)
	contextLines := request.GetInt("context_lines", 1)

	hits, err := s.gateway.SearchCode(ctx, query, fileGlob, maxResults, contextLines)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"hits": hits, "count": len(hits)})
}

func (s *Server) handleDiagnostics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.gateway.Diagnostics(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) handleResetContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.gateway.ResetContext(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
