// Package config holds the full configuration surface of the gateway:
// workspace location, audit rotation, per-class rate limits, context budget,
// the fixed command whitelist / read denylist, and the transport bindings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimit parameterizes one fixed-window limiter class.
type RateLimit struct {
	MaxOps        int `yaml:"max_ops"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the trailing window as a duration.
func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// CommandTimeout returns the per-command execution deadline.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.Command.TimeoutSeconds) * time.Second
}

// WorkspaceConfig locates the sandboxed workspace and bounds result sizes.
type WorkspaceConfig struct {
	Root             string `yaml:"root"`
	MaxFileBytes     int64  `yaml:"max_file_bytes"`
	ListMaxResults   int    `yaml:"list_max_results"`
	SearchMaxResults int    `yaml:"search_max_results"`
}

// AuditConfig controls the append-only audit log and its rotation.
type AuditConfig struct {
	Path       string `yaml:"path"`
	MaxBytes   int64  `yaml:"max_bytes"`
	MaxBackups int    `yaml:"max_backups"`
}

// RateLimits holds one limiter per operation class.
type RateLimits struct {
	Read    RateLimit `yaml:"read"`
	Write   RateLimit `yaml:"write"`
	Command RateLimit `yaml:"command"`
}

// ContextConfig controls the cumulative output budget and summarization.
type ContextConfig struct {
	MaxChars         int     `yaml:"max_chars"`
	SummaryThreshold float64 `yaml:"summary_threshold"`
	SummaryEnabled   bool    `yaml:"summary_enabled"`
}

// CommandConfig bounds subprocess execution.
type CommandConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// WatcherConfig controls command execution observability.
type WatcherConfig struct {
	Enabled bool `yaml:"enabled"`
}

// HTTPConfig configures the plain-HTTP binding.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	Token          string   `yaml:"token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// OAuthConfig configures the OAuth-HTTP binding.
type OAuthConfig struct {
	Addr           string   `yaml:"addr"`
	Issuer         string   `yaml:"issuer"`
	Audience       string   `yaml:"audience"`
	JWKSURL        string   `yaml:"jwks_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequireOrigin  bool     `yaml:"require_origin"`
}

// Config is the root configuration object, constructed once at startup and
// passed into every component.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Audit     AuditConfig     `yaml:"audit"`
	Limits    RateLimits      `yaml:"rate_limits"`
	Context   ContextConfig   `yaml:"context"`
	Command   CommandConfig   `yaml:"command"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	HTTP      HTTPConfig      `yaml:"http"`
	OAuth     OAuthConfig     `yaml:"oauth"`
}

// Default returns the stock configuration rooted at the working directory.
func Default() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{
		Workspace: WorkspaceConfig{
			Root:             cwd,
			MaxFileBytes:     DefaultMaxFileBytes,
			ListMaxResults:   DefaultListMaxResults,
			SearchMaxResults: DefaultSearchMaxResults,
		},
		Audit: AuditConfig{
			Path:       "", // resolved to <root>/.toolgate_audit.log by Normalize
			MaxBytes:   DefaultAuditMaxBytes,
			MaxBackups: DefaultAuditBackups,
		},
		Limits: RateLimits{
			Read:    RateLimit{MaxOps: DefaultReadMaxOps, WindowSeconds: DefaultRateWindowSeconds},
			Write:   RateLimit{MaxOps: DefaultWriteMaxOps, WindowSeconds: DefaultRateWindowSeconds},
			Command: RateLimit{MaxOps: DefaultCmdMaxOps, WindowSeconds: DefaultRateWindowSeconds},
		},
		Context: ContextConfig{
			MaxChars:         DefaultContextMaxChars,
			SummaryThreshold: DefaultSummaryThreshold,
			SummaryEnabled:   true,
		},
		Command: CommandConfig{TimeoutSeconds: int(DefaultCommandTimeout / time.Second)},
		Watcher: WatcherConfig{Enabled: true},
		HTTP: HTTPConfig{
			Addr:           "127.0.0.1:8001",
			AllowedOrigins: []string{"http://localhost:3000", "https://chat.openai.com"},
		},
		OAuth: OAuthConfig{
			Addr:           "127.0.0.1:8002",
			AllowedOrigins: []string{"https://chatgpt.com", "https://chat.openai.com"},
			RequireOrigin:  true,
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing file is an error; callers that want pure defaults use
// Default followed by FromEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) // #nosec G304 - operator-supplied config path
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.FromEnv()
	return cfg, cfg.Normalize()
}

// FromEnv applies TOOLGATE_* environment overrides in place.
func (c *Config) FromEnv() {
	if v := os.Getenv("TOOLGATE_WORKSPACE"); v != "" {
		c.Workspace.Root = v
	}
	if v := os.Getenv("TOOLGATE_AUDIT_LOG"); v != "" {
		c.Audit.Path = v
	}
	if v, ok := envInt64("TOOLGATE_MAX_FILE_BYTES"); ok {
		c.Workspace.MaxFileBytes = v
	}
	if v, ok := envInt64("TOOLGATE_AUDIT_MAX_BYTES"); ok {
		c.Audit.MaxBytes = v
	}
	if v, ok := envInt("TOOLGATE_CONTEXT_MAX_CHARS"); ok {
		c.Context.MaxChars = v
	}
	if v := os.Getenv("TOOLGATE_CONTEXT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Context.SummaryThreshold = f
		}
	}
	if v := os.Getenv("TOOLGATE_CONTEXT_SUMMARY_ENABLED"); v != "" {
		c.Context.SummaryEnabled = strings.EqualFold(v, "true")
	}
	if v, ok := envInt("TOOLGATE_COMMAND_TIMEOUT"); ok {
		c.Command.TimeoutSeconds = v
	}
	if v := os.Getenv("TOOLGATE_ENABLE_WATCHER"); v != "" {
		c.Watcher.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("TOOLGATE_HTTP_TOKEN"); v != "" {
		c.HTTP.Token = v
	}
	if v := os.Getenv("TOOLGATE_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.AllowedOrigins = splitList(v)
		c.OAuth.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TOOLGATE_AUTH_ISSUER"); v != "" {
		c.OAuth.Issuer = v
	}
	if v := os.Getenv("TOOLGATE_AUTH_AUDIENCE"); v != "" {
		c.OAuth.Audience = v
	}
	if v := os.Getenv("TOOLGATE_AUTH_JWKS_URL"); v != "" {
		c.OAuth.JWKSURL = v
	}
	if v := os.Getenv("TOOLGATE_REQUIRE_ORIGIN"); v != "" {
		c.OAuth.RequireOrigin = !strings.EqualFold(v, "false")
	}
}

// Normalize resolves derived fields and validates the parts every mode needs.
func (c *Config) Normalize() error {
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace root must be set")
	}
	if c.Audit.Path == "" {
		c.Audit.Path = c.Workspace.Root + string(os.PathSeparator) + ".toolgate_audit.log"
	}
	if c.Workspace.MaxFileBytes <= 0 {
		c.Workspace.MaxFileBytes = DefaultMaxFileBytes
	}
	if c.Workspace.ListMaxResults <= 0 {
		c.Workspace.ListMaxResults = DefaultListMaxResults
	}
	if c.Workspace.SearchMaxResults <= 0 {
		c.Workspace.SearchMaxResults = DefaultSearchMaxResults
	}
	if c.Audit.MaxBackups <= 0 {
		c.Audit.MaxBackups = DefaultAuditBackups
	}
	if c.Context.SummaryThreshold <= 0 || c.Context.SummaryThreshold > 1 {
		c.Context.SummaryThreshold = DefaultSummaryThreshold
	}
	if c.Command.TimeoutSeconds <= 0 {
		c.Command.TimeoutSeconds = int(DefaultCommandTimeout / time.Second)
	}
	// Issuer URLs compare with a trailing slash, the way JWKS providers
	// publish them.
	if c.OAuth.Issuer != "" && !strings.HasSuffix(c.OAuth.Issuer, "/") {
		c.OAuth.Issuer += "/"
	}
	if c.OAuth.JWKSURL == "" && c.OAuth.Issuer != "" {
		c.OAuth.JWKSURL = c.OAuth.Issuer + ".well-known/jwks.json"
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
