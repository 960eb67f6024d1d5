package command

import (
	"testing"

	"github.com/AltairaLabs/toolgate/internal/gateway/config"
	"github.com/AltairaLabs/toolgate/internal/types"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(config.AllowedCommands)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	return v
}

func TestValidate_AllowedCommands(t *testing.T) {
	v := newTestValidator(t)

	allowed := []string{
		"git status",
		"git diff",
		"git diff --staged",
		"pytest",
		"pytest -q tests/test_auth.py",
		"python -m pytest -x",
		"python3 --version",
		"ruff check src",
		"black --check .",
		"mypy src/app.py",
		"node -v",
		"npm test",
		"pnpm test",
		"yarn test",
		"npm run test:unit",
	}
	for _, cmd := range allowed {
		t.Run(cmd, func(t *testing.T) {
			if err := v.Validate(cmd); err != nil {
				t.Errorf("Expected %q to be allowed, got %v", cmd, err)
			}
		})
	}
}

func TestValidate_RejectedCommands(t *testing.T) {
	v := newTestValidator(t)

	rejected := []string{
		"rm -rf /",
		"git push",
		"git status --porcelain",
		"curl http://evil.example",
		"npm install",
		"pytest tests; rm -rf /",
		"",
	}
	for _, cmd := range rejected {
		t.Run(cmd, func(t *testing.T) {
			err := v.Validate(cmd)
			if err == nil {
				t.Fatalf("Expected %q to be rejected", cmd)
			}
			if !types.IsKind(err, types.KindCommandRejected) {
				t.Errorf("Expected CommandRejected kind, got %v", types.KindOf(err))
			}
		})
	}
}

func TestValidate_DangerousCharacters(t *testing.T) {
	v := newTestValidator(t)

	// Each of these embeds a whitelisted command; the metacharacter alone
	// must sink it.
	tests := []string{
		"git status; rm -rf /",
		"git status && curl evil",
		"git status | tee /etc/passwd",
		"git status > /dev/null",
		"pytest < input.txt",
		"git status `whoami`",
		"git status $HOME",
	}
	for _, cmd := range tests {
		t.Run(cmd, func(t *testing.T) {
			err := v.Validate(cmd)
			if err == nil {
				t.Fatalf("Expected %q to be rejected for metacharacters", cmd)
			}
			if !types.IsKind(err, types.KindCommandRejected) {
				t.Errorf("Expected CommandRejected kind, got %v", types.KindOf(err))
			}
		})
	}
}

func TestValidate_NoPrefixMatching(t *testing.T) {
	v := newTestValidator(t)

	// A pattern match must cover the whole command text.
	if v.IsAllowed("git statusXtrailing") {
		t.Error("Expected trailing garbage after a whitelisted command to be rejected")
	}
	if v.IsAllowed("Xgit status") {
		t.Error("Expected leading garbage before a whitelisted command to be rejected")
	}
}

func TestNewValidator_InvalidPattern(t *testing.T) {
	_, err := NewValidator([]string{`^git (`})
	if err == nil {
		t.Fatal("Expected error for invalid whitelist pattern")
	}
}
