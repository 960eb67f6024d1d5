// Package gateway composes the sandbox, rate limiters, command machinery,
// context tracker, and audit log into the fixed set of operations exposed to
// an external agent. One Gateway instance owns all shared mutable state; it
// is constructed once at startup and handed to every transport adapter.
package gateway

import (
	"log/slog"
	"time"

	"github.com/AltairaLabs/toolgate/internal/audit"
	"github.com/AltairaLabs/toolgate/internal/command"
	"github.com/AltairaLabs/toolgate/internal/contexttrack"
	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/ratelimit"
	"github.com/AltairaLabs/toolgate/internal/sandbox"
	"github.com/AltairaLabs/toolgate/internal/types"
)

// Rate-limit operation classes.
const (
	classRead    = "read"
	classWrite   = "write"
	classCommand = "command"
)

// Gateway is the tool-execution façade. All operations sequence rate-check,
// sandbox/validate, effect, context tracking, then best-effort audit.
type Gateway struct {
	cfg      config.Config
	sandbox  *sandbox.Sandbox
	rateRead *ratelimit.Limiter
	rateWr   *ratelimit.Limiter
	rateCmd  *ratelimit.Limiter
	auditLog *audit.Log
	valid    *command.Validator
	executor *command.Executor
	watcher  *command.Watcher
	tracker  *contexttrack.Tracker
	logger   *slog.Logger
}

// New creates a fully wired gateway from configuration.
func New(cfg config.Config, logger *slog.Logger) (*Gateway, error) {
	sb, err := sandbox.New(cfg.Workspace.Root, config.ReadDenylist)
	if err != nil {
		return nil, err
	}
	valid, err := command.NewValidator(config.AllowedCommands)
	if err != nil {
		return nil, err
	}
	watcher := command.NewWatcher(cfg.Watcher.Enabled, config.WatcherHistorySize, logger)

	return &Gateway{
		cfg:      cfg,
		sandbox:  sb,
		rateRead: ratelimit.New(cfg.Limits.Read.MaxOps, cfg.Limits.Read.Window()),
		rateWr:   ratelimit.New(cfg.Limits.Write.MaxOps, cfg.Limits.Write.Window()),
		rateCmd:  ratelimit.New(cfg.Limits.Command.MaxOps, cfg.Limits.Command.Window()),
		auditLog: audit.NewLog(cfg.Audit.Path, cfg.Audit.MaxBytes, cfg.Audit.MaxBackups, logger),
		valid:    valid,
		executor: command.NewExecutor(sb.Root(), watcher),
		watcher:  watcher,
		tracker: contexttrack.NewTracker(
			cfg.Context.MaxChars,
			cfg.Context.SummaryThreshold,
			cfg.Context.SummaryEnabled,
			config.SummaryHistorySize,
		),
		logger: logger,
	}, nil
}

// WorkspaceRoot returns the canonical sandbox root.
func (g *Gateway) WorkspaceRoot() string { return g.sandbox.Root() }

// allow checks the limiter for an operation class.
func (g *Gateway) allow(class, op string) error {
	var l *ratelimit.Limiter
	switch class {
	case classWrite:
		l = g.rateWr
	case classCommand:
		l = g.rateCmd
	default:
		l = g.rateRead
	}
	if !l.Allow() {
		err := types.E(types.KindRateLimitExceeded, op, "rate limit exceeded for %s operations", class)
		g.audit(op, nil, false, map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// audit fires a best-effort audit write. Failures never propagate.
func (g *Gateway) audit(op string, args map[string]any, ok bool, meta map[string]any) {
	g.auditLog.Append(audit.Entry{
		Timestamp: time.Now(),
		Operation: op,
		Args:      args,
		OK:        ok,
		Meta:      meta,
	})
}

// summaryTarget derives the summarizer output bound from the context budget.
func (g *Gateway) summaryTarget() int {
	return int(float64(g.cfg.Context.MaxChars) * config.SummaryTargetFraction)
}
