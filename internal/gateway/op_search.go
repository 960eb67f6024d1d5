package gateway

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// SearchHit is one regex match inside a workspace file.
type SearchHit struct {
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Match   string   `json:"match"`
	Context []string `json:"context,omitempty"`
}

// SearchCode scans workspace files matching fileGlob for the regex query.
// Pattern compilation fails fast with InvalidPattern before any file is
// touched. Denylisted and oversized files are always skipped; unreadable
// files are skipped silently. Hits are capped at maxResults.
func (g *Gateway) SearchCode(ctx context.Context, query, fileGlob string, maxResults, contextLines int) ([]SearchHit, error) {
	const op = "search_code"
	if err := g.allow(classRead, op); err != nil {
		return nil, err
	}
	if fileGlob == "" {
		fileGlob = "**/*"
	}
	if maxResults <= 0 || maxResults > g.cfg.Workspace.SearchMaxResults {
		maxResults = g.cfg.Workspace.SearchMaxResults
	}
	if contextLines < 0 {
		contextLines = 0
	}
	args := map[string]any{"query": query, "file_glob": fileGlob, "max_results": maxResults}

	re, compileErr := regexp.Compile(query)
	if compileErr != nil {
		err := types.E(types.KindInvalidPattern, op, "invalid regex: %v", compileErr)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}
	if !doublestar.ValidatePattern(fileGlob) {
		err := types.E(types.KindInvalidPattern, op, "invalid glob pattern: %s", fileGlob)
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	var hits []SearchHit
	root := g.sandbox.Root()
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
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
		if ok, _ := doublestar.Match(fileGlob, rel); !ok {
			return nil
		}
		if g.sandbox.IsDenylisted(rel) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > g.cfg.Workspace.MaxFileBytes {
			return nil
		}
		data, readErr := os.ReadFile(path) // #nosec G304 - walked under the sandbox root
		if readErr != nil {
			return nil
		}

		lines := strings.Split(strings.ToValidUTF8(string(data), "�"), "\n")
		for i, line := range lines {
			if !re.MatchString(line) {
				continue
			}
			hit := SearchHit{File: rel, Line: i + 1, Match: line}
			if contextLines > 0 {
				lo := max(0, i-contextLines)
				hi := min(len(lines), i+contextLines+1)
				hit.Context = append([]string(nil), lines[lo:hi]...)
			}
			hits = append(hits, hit)
			if len(hits) >= maxResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if walkErr != nil && walkErr != fs.SkipAll {
		g.audit(op, args, false, map[string]any{"error": walkErr.Error()})
		return nil, fmt.Errorf("search workspace: %w", walkErr)
	}

	// Account hits against the context budget; over the threshold, collapse
	// the accounting to a per-file rollup of the densest files.
	var size int
	for _, h := range hits {
		size += len(h.Match)
		for _, c := range h.Context {
			size += len(c)
		}
	}
	if g.tracker.AddN(size); g.tracker.ShouldSummarize() {
		summary := summarizeHits(hits)
		g.tracker.RecordSummary(size, len(summary))
		g.tracker.Reset()
		g.tracker.Add(summary)
	}

	g.audit(op, args, true, map[string]any{"hits": len(hits)})
	return hits, nil
}

// summarizeHits rolls search hits up to per-file counts, densest first.
func summarizeHits(hits []SearchHit) string {
	perFile := make(map[string]int)
	for _, h := range hits {
		perFile[h.File]++
	}
	files := make([]string, 0, len(perFile))
	for f := range perFile {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if perFile[files[i]] != perFile[files[j]] {
			return perFile[files[i]] > perFile[files[j]]
		}
		return files[i] < files[j]
	})
	if len(files) > 5 {
		files = files[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%d matches across %d files]\n", len(hits), len(perFile))
	for _, f := range files {
		fmt.Fprintf(&b, "%s: %d matches\n", f, perFile[f])
	}
	return b.String()
}
