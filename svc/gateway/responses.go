package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/async"
	"github.com/dmitrymomot/tenantkit/pkg/jwt"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// errorBody is the JSON error envelope returned for rejected requests.
type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code})
}

// respondRejection maps a resolution failure to the edge response.
// Identity faults and unknown tenants both read as 401 so probing for
// valid tenant identifiers yields nothing; inactive tenants are 403
// because the credential itself was fine.
func respondRejection(ctx context.Context, log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, "token_expired")
	case jwt.IsVerificationError(err):
		writeError(w, http.StatusUnauthorized, "invalid_token")
	case errors.Is(err, tenant.ErrTenantNotFound):
		writeError(w, http.StatusUnauthorized, "unknown_tenant")
	case errors.Is(err, tenant.ErrTenantInactive):
		writeError(w, http.StatusForbidden, "tenant_inactive")
	case errors.Is(err, tenant.ErrTenantContextConflict):
		writeError(w, http.StatusConflict, "tenant_conflict")
	case errors.Is(err, async.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		log.ErrorContext(ctx, "tenant resolution timed out", "error", err)
		writeError(w, http.StatusGatewayTimeout, "resolver_timeout")
	default:
		log.ErrorContext(ctx, "tenant resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
