package transport

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/types"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"auth invalid", types.E(types.KindAuthInvalid, "auth", "bad token"), http.StatusUnauthorized},
		{"auth origin", types.E(types.KindAuthForbiddenOrigin, "auth", "origin"), http.StatusForbidden},
		{"unknown op", fmt.Errorf("%w: nope", gateway.ErrUnknownOperation), http.StatusNotFound},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		// Domain failures ride in the body, not the status line.
		{"rate limit", types.E(types.KindRateLimitExceeded, "read_file", "limit"), http.StatusOK},
		{"path escape", types.E(types.KindPathEscape, "read_file", "escape"), http.StatusOK},
		{"denylisted", types.E(types.KindDenylisted, "read_file", "denied"), http.StatusOK},
		{"not found", types.E(types.KindNotFound, "read_file", "missing"), http.StatusOK},
		{"already exists", types.E(types.KindAlreadyExists, "write_file", "exists"), http.StatusOK},
		{"invalid pattern", types.E(types.KindInvalidPattern, "search_code", "bad regex"), http.StatusOK},
		{"command rejected", types.E(types.KindCommandRejected, "run_command", "nope"), http.StatusOK},
		{"timeout", types.E(types.KindTimeout, "run_command", "slow"), http.StatusOK},
		{"subprocess", types.E(types.KindSubprocessError, "run_command", "spawn"), http.StatusOK},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StatusFor(test.err); got != test.expected {
				t.Errorf("Expected %d, got %d", test.expected, got)
			}
		})
	}
}
