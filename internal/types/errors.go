// Package types provides shared types used across the toolgate codebase.
package types

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure. Transport adapters translate kinds at
// the boundary; the set is fixed.
type Kind string

const (
	KindRateLimitExceeded   Kind = "RateLimitExceeded"
	KindPathEscape          Kind = "PathEscape"
	KindNotFound            Kind = "NotFound"
	KindDenylisted          Kind = "Denylisted"
	KindAlreadyExists       Kind = "AlreadyExists"
	KindFileTooLarge        Kind = "FileTooLarge"
	KindInvalidPattern      Kind = "InvalidPattern"
	KindCommandRejected     Kind = "CommandRejected"
	KindTimeout             Kind = "Timeout"
	KindSubprocessError     Kind = "SubprocessError"
	KindAuthInvalid         Kind = "AuthInvalid"
	KindAuthForbiddenOrigin Kind = "AuthForbiddenOrigin"
)

// Error is a classified gateway failure. Security-relevant errors are
// surfaced verbatim to callers and audited with ok=false.
type Error struct {
	Kind Kind
	Op   string // operation name, e.g. "read_file"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error with a formatted message.
func E(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or "" if err carries none.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
