package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// Write modes.
const (
	WriteModeReplace = "replace"
	WriteModeAppend  = "append"
	WriteModeCreate  = "create"
)

// WriteResult reports a completed (or previewed) write.
type WriteResult struct {
	Status  string `json:"status"`
	Action  string `json:"action,omitempty"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
	Mode    string `json:"mode"`
	Preview bool   `json:"preview,omitempty"`
	Note    string `json:"note,omitempty"`
}

// WriteFile writes content to a workspace file. With requireConfirmation the
// call returns a preview plan and performs no mutation; a second call with
// requireConfirmation=false applies it. Mode create fails with AlreadyExists
// on an existing target; replace and append behave like their names.
func (g *Gateway) WriteFile(ctx context.Context, path, content, mode string, requireConfirmation, createDirs bool) (*WriteResult, error) {
	const op = "write_file"
	if mode == "" {
		mode = WriteModeReplace
	}
	if err := g.allow(classWrite, op); err != nil {
		return nil, err
	}
	args := map[string]any{
		"path": path, "mode": mode, "bytes": len(content),
		"require_confirmation": requireConfirmation, "create_dirs": createDirs,
	}

	if mode != WriteModeReplace && mode != WriteModeAppend && mode != WriteModeCreate {
		err := fmt.Errorf("unknown write mode: %s", mode)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	abs, err := g.sandbox.Resolve(path)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}
	rel, err := g.sandbox.Rel(abs)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	if requireConfirmation {
		// Preview: report what would happen, mutate nothing.
		res := &WriteResult{
			Status:  "preview",
			Action:  "WRITE_PREVIEW",
			Path:    rel,
			Bytes:   len(content),
			Mode:    mode,
			Preview: true,
			Note:    "re-issue with require_confirmation=false to apply",
		}
		g.audit(op, args, true, map[string]any{"preview": true})
		return res, nil
	}

	if mode == WriteModeCreate {
		if _, statErr := os.Stat(abs); statErr == nil {
			err := types.E(types.KindAlreadyExists, op, "file already exists: %s", rel)
			g.audit(op, args, false, map[string]any{"error": err.Error()})
			return nil, err
		}
	}

	parent := filepath.Dir(abs)
	if createDirs {
		if mkErr := os.MkdirAll(parent, 0o750); mkErr != nil {
			err := fmt.Errorf("create parent directories: %w", mkErr)
			g.audit(op, args, false, map[string]any{"error": err.Error()})
			return nil, err
		}
	} else if info, statErr := os.Stat(parent); statErr != nil || !info.IsDir() {
		err := types.E(types.KindNotFound, op, "parent directory does not exist: %s", filepath.Dir(rel))
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	var writeErr error
	if mode == WriteModeAppend {
		f, openErr := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640) // #nosec G304
		if openErr != nil {
			writeErr = openErr
		} else {
			_, writeErr = f.WriteString(content)
			if closeErr := f.Close(); writeErr == nil {
				writeErr = closeErr
			}
		}
	} else {
		writeErr = os.WriteFile(abs, []byte(content), 0o640) // #nosec G304
	}
	if writeErr != nil {
		err := fmt.Errorf("write %s: %w", rel, writeErr)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	g.audit(op, args, true, map[string]any{"written": len(content)})
	return &WriteResult{Status: "ok", Path: rel, Bytes: len(content), Mode: mode}, nil
}
