package gateway

import (
	"context"
	"os"
	"time"

	"github.com/AltairaLabs/toolgate/internal/command"
	"github.com/AltairaLabs/toolgate/internal/contexttrack"
	"github.com/AltairaLabs/toolgate/internal/ratelimit"
)

// LimiterState reports one rate-limiter class.
type LimiterState struct {
	MaxOps        int `json:"max_ops"`
	WindowSeconds int `json:"window_seconds"`
	Used          int `json:"used"`
}

// DiagnosticsReport is the full operational snapshot.
type DiagnosticsReport struct {
	Workspace       string                  `json:"workspace"`
	AuditLog        string                  `json:"audit_log"`
	MaxFileBytes    int64                   `json:"max_file_bytes"`
	RateLimits      map[string]LimiterState `json:"rate_limits"`
	AllowedCommands []string                `json:"allowed_commands"`
	ReadDenylist    []string                `json:"read_denylist"`
	Context         contexttrack.Usage      `json:"context"`
	Watcher         command.Status          `json:"watcher"`
	PerfProbeMs     float64                 `json:"perf_probe_ms"`
}

// ResetResult reports a completed context reset.
type ResetResult struct {
	Status            string `json:"status"`
	PreviousChars     int    `json:"previous_chars"`
	CurrentChars      int    `json:"current_chars"`
	RateLimitersReset bool   `json:"rate_limiters_reset"`
}

// Diagnostics returns configuration, policy, rate-limiter usage, context
// budget state, recent command outcomes, and a filesystem latency probe.
// It is not rate limited so it stays usable when the limits themselves are
// the thing being debugged.
func (g *Gateway) Diagnostics(ctx context.Context) (*DiagnosticsReport, error) {
	const op = "get_diagnostics"

	limiterState := func(l *ratelimit.Limiter) LimiterState {
		maxOps, window := l.Limits()
		return LimiterState{
			MaxOps:        maxOps,
			WindowSeconds: int(window / time.Second),
			Used:          l.InWindow(),
		}
	}

	// Time a single directory scan as a cheap responsiveness probe.
	start := time.Now()
	_, _ = os.ReadDir(g.sandbox.Root())
	probe := float64(time.Since(start).Microseconds()) / 1000.0

	report := &DiagnosticsReport{
		Workspace:    g.sandbox.Root(),
		AuditLog:     g.cfg.Audit.Path,
		MaxFileBytes: g.cfg.Workspace.MaxFileBytes,
		RateLimits: map[string]LimiterState{
			classRead:    limiterState(g.rateRead),
			classWrite:   limiterState(g.rateWr),
			classCommand: limiterState(g.rateCmd),
		},
		AllowedCommands: g.valid.Patterns(),
		ReadDenylist:    g.sandbox.Denylist(),
		Context:         g.tracker.Snapshot(),
		Watcher:         g.watcher.Snapshot(10),
		PerfProbeMs:     probe,
	}

	g.audit(op, nil, true, map[string]any{"perf_probe_ms": probe})
	return report, nil
}

// ResetContext zeroes the context budget counter and clears every
// rate-limiter window. The audit log is untouched.
func (g *Gateway) ResetContext(ctx context.Context) (*ResetResult, error) {
	const op = "reset_context"

	prev := g.tracker.CurrentChars()
	g.tracker.Reset()
	g.rateRead.Reset()
	g.rateWr.Reset()
	g.rateCmd.Reset()

	g.audit(op, nil, true, map[string]any{"previous_chars": prev})
	return &ResetResult{
		Status:            "reset",
		PreviousChars:     prev,
		CurrentChars:      0,
		RateLimitersReset: true,
	}, nil
}
