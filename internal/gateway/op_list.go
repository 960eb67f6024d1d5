package gateway

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// ListFiles enumerates workspace files under base matching the glob pattern,
// denylist-filtered unless includeDenied, capped at maxResults. Paths come
// back POSIX-style relative to the workspace root. Order is deterministic
// (lexicographic) but callers must not depend on it.
func (g *Gateway) ListFiles(ctx context.Context, base, pattern string, maxResults int, includeDenied bool) ([]string, error) {
	const op = "list_files"
	if err := g.allow(classRead, op); err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "**/*"
	}
	if maxResults <= 0 || maxResults > g.cfg.Workspace.ListMaxResults {
		maxResults = g.cfg.Workspace.ListMaxResults
	}
	args := map[string]any{"base": base, "pattern": pattern, "max_results": maxResults, "include_denied": includeDenied}

	baseAbs, err := g.sandbox.Resolve(base)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}
	if info, statErr := os.Stat(baseAbs); statErr != nil || !info.IsDir() {
		err := types.E(types.KindNotFound, op, "not a directory: %s", base)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		err := types.E(types.KindInvalidPattern, op, "invalid glob pattern: %s", pattern)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	var results []string
	walkErr := filepath.WalkDir(baseAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := g.sandbox.Rel(path)
		if relErr != nil {
			return nil
		}
		// Glob and results are both relative to the workspace root, even when
		// base narrows the walk.
		if ok, _ := doublestar.Match(pattern, rel); !ok {
			return nil
		}
		if !includeDenied && g.sandbox.IsDenylisted(rel) {
			return nil
		}
		results = append(results, rel)
		if len(results) >= maxResults {
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil && walkErr != fs.SkipAll {
		err := types.Wrap(types.KindNotFound, op, walkErr)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}
	sort.Strings(results)

	// Listings count against the context budget; once over the threshold the
	// accounting is collapsed to a per-extension rollup so repeated large
	// listings do not starve subsequent reads.
	joined := strings.Join(results, "\n")
	if g.tracker.Add(joined); g.tracker.ShouldSummarize() {
		summary := summarizeListing(results)
		g.tracker.RecordSummary(len(joined), len(summary))
		g.tracker.Reset()
		g.tracker.Add(summary)
	}

	g.audit(op, args, true, map[string]any{"count": len(results)})
	return results, nil
}

// summarizeListing collapses a file listing into per-extension counts with a
// few example paths each.
func summarizeListing(paths []string) string {
	byExt := make(map[string][]string)
	for _, p := range paths {
		ext := filepath.Ext(p)
		if ext == "" {
			ext = "(none)"
		}
		byExt[ext] = append(byExt[ext], p)
	}
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var b strings.Builder
	fmt.Fprintf(&b, "[%d files across %d extensions]\n", len(paths), len(exts))
	for _, ext := range exts {
		group := byExt[ext]
		examples := group
		if len(examples) > 3 {
			examples = examples[:3]
		}
		fmt.Fprintf(&b, "%s: %d (%s)\n", ext, len(group), strings.Join(examples, ", "))
	}
	return b.String()
}
