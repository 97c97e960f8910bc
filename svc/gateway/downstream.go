package gateway

import (
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/tenantctx"
)

// Reestablish is the downstream counterpart of the edge middleware: it
// verifies the signed internal headers and re-establishes the tenant
// context from them, without consulting the tenant directory. Internal
// services mount it on every tenant-scoped route; requests arriving
// without valid headers are rejected.
func Reestablish(signer *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := signer.Verify(r.Header)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_internal_identity")
				return
			}

			ctx, err := tenantctx.Establish(r.Context(), tenantctx.Context{
				TenantID:   id.TenantID,
				SchemaName: id.SchemaName,
				SubjectID:  id.SubjectID,
				IssuedAt:   id.IssuedAt,
			})
			if err != nil {
				writeError(w, http.StatusConflict, "tenant_conflict")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
