package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownOperation is returned by Invoke for names outside the registry.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation describes one registry entry: wire name, human description, and
// the parameter schema surfaced in the HTTP manifest.
type Operation struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

// Operations returns the fixed operation set in registration order. The set
// is the single source of truth for every transport.
func (g *Gateway) Operations() []Operation {
	return []Operation{
		{
			Name:        "read_file",
			Description: "Read a file from the workspace (UTF-8, replacement characters for invalid bytes)",
			Params: map[string]string{
				"path":         "string, workspace-relative path (required)",
				"allow_denied": "bool, bypass the sensitive-path denylist (default false)",
			},
		},
		{
			Name:        "list_files",
			Description: "List workspace files matching a glob pattern",
			Params: map[string]string{
				"base":           "string, directory to list from (default workspace root)",
				"pattern":        "string, glob pattern (default **/*)",
				"max_results":    "int, result cap",
				"include_denied": "bool, include denylisted paths (default false)",
			},
		},
		{
			Name:        "write_file",
			Description: "Write a workspace file with preview-then-apply confirmation",
			Params: map[string]string{
				"path":                 "string, workspace-relative path (required)",
				"content":              "string, file content (required)",
				"mode":                 "string, replace|append|create (default replace)",
				"require_confirmation": "bool, return a preview instead of writing (default true)",
				"create_dirs":          "bool, create missing parent directories (default true)",
			},
		},
		{
			Name:        "run_command",
			Description: "Run a whitelisted command in the workspace root",
			Params: map[string]string{
				"command":   "string, full command text (required)",
				"timeout_s": "int, seconds before the process is killed",
			},
		},
		{
			Name:        "search_code",
			Description: "Regex search across workspace files",
			Params: map[string]string{
				"query":         "string, regular expression (required)",
				"file_glob":     "string, glob filter on files (default **/*)",
				"max_results":   "int, hit cap",
				"context_lines": "int, lines of context around each hit (default 1)",
			},
		},
		{
			Name:        "get_diagnostics",
			Description: "Report limits, policy, context usage, and recent command outcomes",
			Params:      map[string]string{},
		},
		{
			Name:        "reset_context",
			Description: "Zero the context budget and clear all rate-limiter windows",
			Params:      map[string]string{},
		},
	}
}

// Invoke dispatches a named operation with loosely typed arguments, the form
// both HTTP bindings receive. Unknown names return ErrUnknownOperation so
// transports can distinguish routing failures from operation failures.
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "read_file":
		path, err := strArg(args, "path", true)
		if err != nil {
			return nil, err
		}
		return g.ReadFile(ctx, path, boolArg(args, "allow_denied"))
	case "list_files":
		base, _ := strArg(args, "base", false)
		if base == "" {
			base = "."
		}
		pattern, _ := strArg(args, "pattern", false)
		return g.ListFiles(ctx, base, pattern, intArg(args, "max_results"), boolArg(args, "include_denied"))
	case "write_file":
		path, err := strArg(args, "path", true)
		if err != nil {
			return nil, err
		}
		content, err := strArg(args, "content", true)
		if err != nil {
			return nil, err
		}
		mode, _ := strArg(args, "mode", false)
		// Confirmation and directory creation default on; callers opt out.
		return g.WriteFile(ctx, path, content, mode,
			boolArgDefault(args, "require_confirmation", true),
			boolArgDefault(args, "create_dirs", true))
	case "run_command":
		cmd, err := strArg(args, "command", true)
		if err != nil {
			return nil, err
		}
		timeout := time.Duration(intArg(args, "timeout_s")) * time.Second
		return g.RunCommand(ctx, cmd, timeout)
	case "search_code":
		query, err := strArg(args, "query", true)
		if err != nil {
			return nil, err
		}
		glob, _ := strArg(args, "file_glob", false)
		return g.SearchCode(ctx, query, glob, intArg(args, "max_results"),
			intArgDefault(args, "context_lines", 1))
	case "get_diagnostics":
		return g.Diagnostics(ctx)
	case "reset_context":
		return g.ResetContext(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
}

func strArg(args map[string]any, key string, required bool) (string, error) {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	if required {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return "", nil
}

func boolArg(args map[string]any, key string) bool {
	return boolArgDefault(args, key, false)
}

func boolArgDefault(args map[string]any, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
		if s, ok := v.(string); ok {
			return s == "true" || s == "1"
		}
	}
	return def
}

// intArg tolerates the numeric shapes JSON decoding produces.
func intArg(args map[string]any, key string) int {
	return intArgDefault(args, key, 0)
}

func intArgDefault(args map[string]any, key string, def int) int {
	if _, ok := args[key]; !ok {
		return def
	}
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
