// Package transport holds glue shared by the HTTP bindings.
package transport

import (
	"errors"
	"net/http"

	"github.com/AltairaLabs/toolgate/internal/gateway"
	"github.com/AltairaLabs/toolgate/internal/types"
)

// StatusFor maps a gateway failure to an HTTP status. Domain failures travel
// in the {ok:false, error} body with a 200 so clients key off the body, not
// transport codes; only auth failures and routing mistakes get real HTTP
// semantics, and unclassified internal errors get a 500.
func StatusFor(err error) int {
	if errors.Is(err, gateway.ErrUnknownOperation) {
		return http.StatusNotFound
	}
	switch types.KindOf(err) {
	case types.KindAuthInvalid:
		return http.StatusUnauthorized
	case types.KindAuthForbiddenOrigin:
		return http.StatusForbidden
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
