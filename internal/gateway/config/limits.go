package config

import "time"

// Default limits. Values mirror what the gateway has always shipped with;
// all of them can be overridden via the config file or environment.
const (
	// DefaultMaxFileBytes is the largest file read_file will return.
	DefaultMaxFileBytes = 2_000_000

	// DefaultAuditMaxBytes is the audit log size that triggers rotation.
	DefaultAuditMaxBytes = 10_000_000
	// DefaultAuditBackups is how many rotated audit logs are kept.
	DefaultAuditBackups = 3

	// DefaultContextMaxChars is the context budget before summarization.
	DefaultContextMaxChars = 100_000
	// DefaultSummaryThreshold is the budget fraction that triggers summarization.
	DefaultSummaryThreshold = 0.85
	// SummaryTargetFraction sizes a summary relative to the context budget.
	SummaryTargetFraction = 0.3

	// DefaultCommandTimeout bounds run_command when the caller gives no timeout.
	DefaultCommandTimeout = 60 * time.Second

	// DefaultListMaxResults caps list_files enumeration.
	DefaultListMaxResults = 2000
	// DefaultSearchMaxResults caps search_code hits.
	DefaultSearchMaxResults = 200

	// WatcherHistorySize is the outcome ring kept by the command watcher.
	WatcherHistorySize = 50
	// SummaryHistorySize is how many summarization events diagnostics retains.
	SummaryHistorySize = 10
)

// Default per-class rate limits: (max operations, trailing window).
const (
	DefaultReadMaxOps  = 100
	DefaultWriteMaxOps = 50
	DefaultCmdMaxOps   = 20

	DefaultRateWindowSeconds = 3600
)
