// Package sandbox confines all filesystem access to a fixed workspace root
// and flags sensitive paths via a glob denylist.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// Sandbox canonicalizes candidate paths and enforces containment in the
// workspace root. The root and denylist are fixed at construction.
type Sandbox struct {
	root     string // canonical absolute path, symlinks resolved
	denylist []string
}

// New creates a sandbox rooted at root. The root is created if missing and
// canonicalized so later containment checks compare real paths.
func New(root string, denylist []string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize workspace root: %w", err)
	}
	return &Sandbox{root: real, denylist: denylist}, nil
}

// Root returns the canonical workspace root.
func (s *Sandbox) Root() string { return s.root }

// Denylist returns the configured glob patterns.
func (s *Sandbox) Denylist() []string { return s.denylist }

// Resolve canonicalizes a workspace-relative path (symlinks and ".." both
// resolved) and fails with PathEscape unless the result stays inside the
// root. The returned path is absolute.
func (s *Sandbox) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", types.E(types.KindPathEscape, "", "path must be relative to workspace root: %s", rel)
	}
	joined := filepath.Join(s.root, filepath.Clean(rel))

	// Resolve symlinks. The target may not exist yet (writes); fall back to
	// the nearest existing parent so a symlinked parent cannot escape.
	real, err := filepath.EvalSymlinks(joined)
	if err != nil {
		parent, err2 := filepath.EvalSymlinks(filepath.Dir(joined))
		if err2 != nil {
			real = joined
		} else {
			real = filepath.Join(parent, filepath.Base(joined))
		}
	}

	if !withinDir(real, s.root) {
		return "", types.E(types.KindPathEscape, "", "path escapes workspace: %s", rel)
	}
	return real, nil
}

// Rel converts an absolute path inside the workspace to its POSIX-style
// relative form used for denylist matching and results.
func (s *Sandbox) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", types.E(types.KindPathEscape, "", "path outside workspace: %s", abs)
	}
	return filepath.ToSlash(rel), nil
}

// IsDenylisted matches a POSIX-style relative path against the denylist.
// The check is advisory: callers decide whether to honor it.
func (s *Sandbox) IsDenylisted(relPosix string) bool {
	relPosix = filepath.ToSlash(relPosix)
	for _, pat := range s.denylist {
		if ok, err := doublestar.Match(pat, relPosix); err == nil && ok {
			return true
		}
	}
	return false
}

// withinDir reports whether path is dir or a descendant of dir. A bare
// prefix check would let /work-evil match /work.
func withinDir(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(os.PathSeparator))
}
