package gateway

import (
	"context"
	"os"
	"strings"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// ReadFile returns the contents of a workspace file. Content that is not
// valid UTF-8 is decoded with replacement characters. allowDenied bypasses
// the sensitive-path denylist; the bypass itself is audited.
func (g *Gateway) ReadFile(ctx context.Context, path string, allowDenied bool) (string, error) {
	const op = "read_file"
	if err := g.allow(classRead, op); err != nil {
		return "", err
	}
	args := map[string]any{"path": path, "allow_denied": allowDenied}

	abs, err := g.sandbox.Resolve(path)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}
	rel, err := g.sandbox.Rel(abs)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}

	if !allowDenied && g.sandbox.IsDenylisted(rel) {
		err := types.E(types.KindDenylisted, op, "path is denylisted: %s", rel)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}

	info, statErr := os.Stat(abs)
	if statErr != nil || !info.Mode().IsRegular() {
		err := types.E(types.KindNotFound, op, "not a readable file: %s", rel)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}
	if info.Size() > g.cfg.Workspace.MaxFileBytes {
		err := types.E(types.KindFileTooLarge, op,
			"file too large: %d bytes exceeds limit of %d", info.Size(), g.cfg.Workspace.MaxFileBytes)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}

	data, readErr := os.ReadFile(abs) // #nosec G304 - sandbox-resolved path
	if readErr != nil {
		err := types.Wrap(types.KindNotFound, op, readErr)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return "", err
	}
	content := strings.ToValidUTF8(string(data), "�")

	content = g.tracker.Process(content, "file: "+rel, g.summaryTarget())

	g.audit(op, args, true, map[string]any{"bytes": len(data), "denylisted": g.sandbox.IsDenylisted(rel)})
	return content, nil
}
