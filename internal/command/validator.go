// Package command validates, supervises, and observes whitelisted shell
// command execution inside the workspace.
package command

import (
	"regexp"
	"strings"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// dangerousChars are rejected outright before any pattern matching. This is
// defense in depth against shell chaining and redirection regardless of
// whitelist quality.
const dangerousChars = ";&|><`$"

// Validator holds the fixed, anchored command whitelist. Not mutable at
// runtime.
type Validator struct {
	raw      []string
	patterns []*regexp.Regexp
}

// NewValidator compiles the whitelist. Every pattern is wrapped so it must
// match the full command text; a prefix match would let trailing subcommands
// through.
func NewValidator(patterns []string) (*Validator, error) {
	v := &Validator{raw: patterns}
	for _, p := range patterns {
		re, err := regexp.Compile(`\A(?:` + p + `)\z`)
		if err != nil {
			return nil, err
		}
		v.patterns = append(v.patterns, re)
	}
	return v, nil
}

// IsAllowed reports whether the command passes both the character denylist
// and the anchored full-match whitelist.
func (v *Validator) IsAllowed(cmd string) bool {
	return v.Validate(cmd) == nil
}

// Validate classifies a rejection with the reason.
func (v *Validator) Validate(cmd string) error {
	if strings.ContainsAny(cmd, dangerousChars) {
		return types.E(types.KindCommandRejected, "run_command",
			"command contains a forbidden shell metacharacter")
	}
	for _, re := range v.patterns {
		if re.MatchString(cmd) {
			return nil
		}
	}
	return types.E(types.KindCommandRejected, "run_command",
		"command not allowed by whitelist")
}

// Patterns returns the raw whitelist for diagnostics.
func (v *Validator) Patterns() []string { return v.raw }
