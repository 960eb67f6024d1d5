package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// Resources are read through the gateway so they obey the same rate limits,
// denylist, and context accounting as tool calls.
func (s *Server) registerResources() {
	tree := mcp.NewResource("workspace://tree", "Workspace file tree",
		mcp.WithResourceDescription("All files in the workspace, denylist-filtered"),
		mcp.WithMIMEType("text/plain"),
	)
	s.server.AddResource(tree, s.readTreeResource)

	summary := mcp.NewResource("workspace://summary", "Workspace summary",
		mcp.WithResourceDescription("Workspace root, policy, and usage overview"),
		mcp.WithMIMEType("text/plain"),
	)
	s.server.AddResource(summary, s.readSummaryResource)

	readme := mcp.NewResource("workspace://readme", "Project README",
		mcp.WithResourceDescription("The project README, if one exists at the workspace root"),
		mcp.WithMIMEType("text/markdown"),
	)
	s.server.AddResource(readme, s.readReadmeResource)
}

func (s *Server) readTreeResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	files, err := s.gateway.ListFiles(ctx, ".", "", 0, false)
	if err != nil {
		return nil, err
	}
	return textResource(request.Params.URI, "text/plain", strings.Join(files, "\n")), nil
}

func (s *Server) readSummaryResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report, err := s.gateway.Diagnostics(ctx)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "workspace: %s\n", report.Workspace)
	fmt.Fprintf(&b, "audit log: %s\n", report.AuditLog)
	fmt.Fprintf(&b, "max file bytes: %d\n", report.MaxFileBytes)
	fmt.Fprintf(&b, "context usage: %.1f%% (%d/%d chars)\n",
		report.Context.UsagePct, report.Context.CurrentChars, report.Context.MaxChars)
	for class, l := range report.RateLimits {
		fmt.Fprintf(&b, "rate limit %s: %d/%d per %ds\n", class, l.Used, l.MaxOps, l.WindowSeconds)
	}
	fmt.Fprintf(&b, "allowed command patterns: %d\n", len(report.AllowedCommands))
	fmt.Fprintf(&b, "denylist patterns: %d\n", len(report.ReadDenylist))
	return textResource(request.Params.URI, "text/plain", b.String()), nil
}

func (s *Server) readReadmeResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var lastErr error
	for _, name := range []string{"README.md", "README.rst", "README.txt", "readme.md"} {
		content, err := s.gateway.ReadFile(ctx, name, false)
		if err == nil {
			return textResource(request.Params.URI, "text/markdown", content), nil
		}
		lastErr = err
		if !types.IsKind(err, types.KindNotFound) {
			break
		}
	}
	return nil, lastErr
}

func textResource(uri, mimeType, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mimeType, Text: text},
	}
}
