package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_StockLimits(t *testing.T) {
	cfg := Default()

	if cfg.Limits.Read.MaxOps != DefaultReadMaxOps {
		t.Errorf("Expected read max %d, got %d", DefaultReadMaxOps, cfg.Limits.Read.MaxOps)
	}
	if cfg.Limits.Write.MaxOps != DefaultWriteMaxOps {
		t.Errorf("Expected write max %d, got %d", DefaultWriteMaxOps, cfg.Limits.Write.MaxOps)
	}
	if cfg.Limits.Command.MaxOps != DefaultCmdMaxOps {
		t.Errorf("Expected command max %d, got %d", DefaultCmdMaxOps, cfg.Limits.Command.MaxOps)
	}
	if cfg.Limits.Read.Window() != time.Hour {
		t.Errorf("Expected 1h window, got %v", cfg.Limits.Read.Window())
	}
	if cfg.Workspace.MaxFileBytes != DefaultMaxFileBytes {
		t.Errorf("Expected max file bytes %d, got %d", DefaultMaxFileBytes, cfg.Workspace.MaxFileBytes)
	}
	if cfg.Context.MaxChars != DefaultContextMaxChars {
		t.Errorf("Expected context max %d, got %d", DefaultContextMaxChars, cfg.Context.MaxChars)
	}
	if cfg.Context.SummaryThreshold != DefaultSummaryThreshold {
		t.Errorf("Expected threshold %v, got %v", DefaultSummaryThreshold, cfg.Context.SummaryThreshold)
	}
}

func TestNormalize_DerivesAuditPath(t *testing.T) {
	cfg := Default()
	cfg.Workspace.Root = "/tmp/ws"
	cfg.Audit.Path = ""

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !strings.HasSuffix(cfg.Audit.Path, ".toolgate_audit.log") {
		t.Errorf("Expected derived audit path, got %s", cfg.Audit.Path)
	}
	if !strings.HasPrefix(cfg.Audit.Path, "/tmp/ws") {
		t.Errorf("Expected audit path under workspace root, got %s", cfg.Audit.Path)
	}
}

func TestNormalize_DerivesJWKSURL(t *testing.T) {
	cfg := Default()
	cfg.OAuth.Issuer = "https://auth.example.com"

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if cfg.OAuth.Issuer != "https://auth.example.com/" {
		t.Errorf("Expected trailing slash on issuer, got %s", cfg.OAuth.Issuer)
	}
	if cfg.OAuth.JWKSURL != "https://auth.example.com/.well-known/jwks.json" {
		t.Errorf("Expected derived JWKS URL, got %s", cfg.OAuth.JWKSURL)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TOOLGATE_WORKSPACE", "/srv/workspace")
	t.Setenv("TOOLGATE_MAX_FILE_BYTES", "12345")
	t.Setenv("TOOLGATE_CONTEXT_THRESHOLD", "0.5")
	t.Setenv("TOOLGATE_CONTEXT_SUMMARY_ENABLED", "false")
	t.Setenv("TOOLGATE_HTTP_TOKEN", "sekrit")
	t.Setenv("TOOLGATE_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TOOLGATE_COMMAND_TIMEOUT", "15")

	cfg := Default()
	cfg.FromEnv()

	if cfg.Workspace.Root != "/srv/workspace" {
		t.Errorf("Expected workspace override, got %s", cfg.Workspace.Root)
	}
	if cfg.Workspace.MaxFileBytes != 12345 {
		t.Errorf("Expected max file bytes 12345, got %d", cfg.Workspace.MaxFileBytes)
	}
	if cfg.Context.SummaryThreshold != 0.5 {
		t.Errorf("Expected threshold 0.5, got %v", cfg.Context.SummaryThreshold)
	}
	if cfg.Context.SummaryEnabled {
		t.Error("Expected summarization disabled")
	}
	if cfg.HTTP.Token != "sekrit" {
		t.Errorf("Expected token override, got %q", cfg.HTTP.Token)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Expected two trimmed origins, got %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.CommandTimeout() != 15*time.Second {
		t.Errorf("Expected 15s command timeout, got %v", cfg.CommandTimeout())
	}
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolgate.yaml")
	yaml := `
workspace:
  root: /srv/project
rate_limits:
  read:
    max_ops: 7
    window_seconds: 60
context:
  max_chars: 5000
http:
  addr: 127.0.0.1:9999
  token: filetoken
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workspace.Root != "/srv/project" {
		t.Errorf("Expected root from file, got %s", cfg.Workspace.Root)
	}
	if cfg.Limits.Read.MaxOps != 7 || cfg.Limits.Read.WindowSeconds != 60 {
		t.Errorf("Expected read limit 7/60s, got %+v", cfg.Limits.Read)
	}
	// Untouched sections keep defaults.
	if cfg.Limits.Write.MaxOps != DefaultWriteMaxOps {
		t.Errorf("Expected default write limit, got %d", cfg.Limits.Write.MaxOps)
	}
	if cfg.Context.MaxChars != 5000 {
		t.Errorf("Expected context max 5000, got %d", cfg.Context.MaxChars)
	}
	if cfg.HTTP.Token != "filetoken" {
		t.Errorf("Expected token from file, got %q", cfg.HTTP.Token)
	}
	if cfg.Audit.Path == "" {
		t.Error("Expected derived audit path after Load")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestAllowedCommands_Compile(t *testing.T) {
	if len(AllowedCommands) == 0 {
		t.Fatal("Expected a non-empty whitelist")
	}
	if len(ReadDenylist) == 0 {
		t.Fatal("Expected a non-empty denylist")
	}
}
