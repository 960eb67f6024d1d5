package config

// AllowedCommands is the fixed command whitelist. Every pattern is anchored
// and matched against the full command text; anything else is rejected before
// a process is spawned. Keep tight and anchored.
var AllowedCommands = []string{
	// Version control, read-only
	`^git\s+status$`,
	`^git\s+diff(?:\s+--(staged|cached))?$`,

	// Python tests and tooling
	`^pytest(?:\s+(?:-q|-x|-s|-k\s+[\w\-\.,]+|-m\s+[\w\-\.,]+|--maxfail=\d+|[\w/\.\-]+))*$`,
	`^python(?:3)?\s+-m\s+pytest(?:\s+(?:-q|-x|-s|-k\s+[\w\-\.,]+|-m\s+[\w\-\.,]+|--maxfail=\d+|[\w/\.\-]+))*$`,
	`^python(?:3)?\s+--version$`,
	`^ruff\s+check(?:\s+[\w/\.\-]+)*$`,
	`^black\s+--check(?:\s+[\w/\.\-]+)*$`,
	`^mypy(?:\s+[\w/\.\-]+)*$`,

	// Node/JS tests and tooling
	`^node\s+-v$`,
	`^(?:npm|pnpm|yarn)\s+test$`,
	`^eslint\s+(?:[\w/\.\-]+|\.)+(?:\s+--max-warnings=0)?$`,

	// Script wrappers, "test*" scripts only
	`^npm\s+run\s+test(?::[\w\-]+)?$`,
	`^yarn\s+run\s+test(?::[\w\-]+)?$`,
	`^pnpm\s+run\s+test(?::[\w\-]+)?$`,
}

// ReadDenylist globs exclude sensitive paths from reads and searches unless
// the caller explicitly overrides. Patterns use POSIX separators and are
// matched against workspace-relative paths.
var ReadDenylist = []string{
	// VCS / vendors / envs
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/node_modules/**",
	"**/.venv/**",
	"**/venv/**",
	"**/.tox/**",
	"**/.cache/**",

	// Secrets and credentials
	"**/.env*",
	"**/*id_rsa*",
	"**/*id_dsa*",
	"**/*.pem",
	"**/*.key",
	"**/*.p12",
	"**/*.pfx",
	"**/*_cert*",
	"**/*.kdbx",

	// Cloud and auth config
	"**/.aws/**",
	"**/.azure/**",
	"**/.gcp/**",
	"**/.ssh/**",
	"**/.npmrc",
	"**/.pypirc",
}
