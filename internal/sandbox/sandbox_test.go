package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/types"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	sb, err := New(t.TempDir(), config.ReadDenylist)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sb
}

func TestResolve_InsideWorkspace(t *testing.T) {
	sb := newTestSandbox(t)

	abs, err := sb.Resolve("src/main.go")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(abs, sb.Root()) {
		t.Errorf("Expected resolved path under root %s, got %s", sb.Root(), abs)
	}
}

func TestResolve_RejectsTraversal(t *testing.T) {
	sb := newTestSandbox(t)

	tests := []string{
		"../outside.txt",
		"../../etc/passwd",
		"src/../../escape",
		"a/b/../../../x",
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := sb.Resolve(path)
			if err == nil {
				t.Fatalf("Expected PathEscape for %q, got nil", path)
			}
			if !types.IsKind(err, types.KindPathEscape) {
				t.Errorf("Expected PathEscape kind, got %v", types.KindOf(err))
			}
		})
	}
}

func TestResolve_RejectsAbsolutePath(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.Resolve("/etc/passwd")
	if err == nil {
		t.Fatal("Expected error for absolute path, got nil")
	}
	if !types.IsKind(err, types.KindPathEscape) {
		t.Errorf("Expected PathEscape kind, got %v", types.KindOf(err))
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	sb := newTestSandbox(t)
	outside := t.TempDir()

	link := filepath.Join(sb.Root(), "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := sb.Resolve("sneaky/secret.txt")
	if err == nil {
		t.Fatal("Expected PathEscape for symlink pointing outside workspace, got nil")
	}
	if !types.IsKind(err, types.KindPathEscape) {
		t.Errorf("Expected PathEscape kind, got %v", types.KindOf(err))
	}
}

func TestResolve_NonexistentTargetInsideWorkspace(t *testing.T) {
	sb := newTestSandbox(t)

	// Writes resolve paths before the file exists.
	abs, err := sb.Resolve("new/dir/file.txt")
	if err != nil {
		t.Fatalf("Expected no error for nonexistent in-workspace path, got %v", err)
	}
	if !strings.HasPrefix(abs, sb.Root()) {
		t.Errorf("Expected path under root, got %s", abs)
	}
}

func TestIsDenylisted(t *testing.T) {
	sb := newTestSandbox(t)

	tests := []struct {
		path   string
		denied bool
	}{
		{".env", true},
		{".env.local", true},
		{"config/.env", true},
		{".git/config", true},
		{"node_modules/pkg/index.js", true},
		{"certs/server.pem", true},
		{"deep/nested/id_rsa", true},
		{"src/main.go", false},
		{"README.md", false},
		{"environment.md", false},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			if got := sb.IsDenylisted(test.path); got != test.denied {
				t.Errorf("IsDenylisted(%q) = %v, expected %v", test.path, got, test.denied)
			}
		})
	}
}

func TestRel_RoundTrip(t *testing.T) {
	sb := newTestSandbox(t)

	abs, err := sb.Resolve("pkg/util.go")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	rel, err := sb.Rel(abs)
	if err != nil {
		t.Fatalf("Rel failed: %v", err)
	}
	if rel != "pkg/util.go" {
		t.Errorf("Expected pkg/util.go, got %s", rel)
	}
}

func TestRel_RejectsOutsidePath(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.Rel("/somewhere/else")
	if err == nil {
		t.Fatal("Expected error for path outside workspace, got nil")
	}
}

func TestWithinDir_SiblingPrefix(t *testing.T) {
	// /work-evil must not count as inside /work.
	if withinDir("/work-evil/file", "/work") {
		t.Error("Expected sibling with shared prefix to be outside")
	}
	if !withinDir("/work/file", "/work") {
		t.Error("Expected child path to be inside")
	}
	if !withinDir("/work", "/work") {
		t.Error("Expected the root itself to be inside")
	}
}
