package tenantctx

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Context is the request-scoped binding of a request to its tenant.
// It is created once per request at the edge, carried through the call
// chain inside context.Context, and dies with the request. It is never
// persisted and never shared between concurrent requests.
type Context struct {
	TenantID   string
	SchemaName string
	SubjectID  string
	IssuedAt   time.Time
}

// contextKey prevents collisions with other packages using context values
type contextKey struct{}

// With returns a context carrying tc, replacing any previous value
// unconditionally. Prefer Establish, which enforces the nesting rules.
func With(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// Current returns the ambient tenant context. The second return value
// is false outside an established scope; callers must treat that as
// "unauthenticated / no tenant" and must never substitute a default.
func Current(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// MustCurrent panics if no tenant context is established. Use only in
// code paths that are unreachable without one.
func MustCurrent(ctx context.Context) Context {
	tc, ok := Current(ctx)
	if !ok {
		panic("tenantctx: no tenant context established")
	}
	return tc
}

// Establish binds tc to the returned context. Nested establishment is
// allowed for internal calls as long as the tenant is the same; naming
// a different tenant inside an established scope fails with
// tenant.ErrTenantContextConflict. The scope ends when the returned
// context goes out of use — callers further down the chain that hold
// the parent context keep seeing the prior ambient value, so no
// explicit restore step exists.
//
// Propagation across asynchronous hand-offs is by inheritance at task
// creation time: spawn subtasks with the returned context (directly or
// via pkg/async) and the carrier follows the logical request, not the
// goroutine.
func Establish(ctx context.Context, tc Context) (context.Context, error) {
	if prev, ok := Current(ctx); ok && prev.TenantID != tc.TenantID {
		return ctx, tenant.ErrTenantContextConflict
	}
	return With(ctx, tc), nil
}

// SchemaName returns the ambient schema name, failing with
// tenant.ErrMissingTenantContext outside an established scope. This is
// the accessor the schema router calls on every operation.
func SchemaName(ctx context.Context) (string, error) {
	tc, ok := Current(ctx)
	if !ok || tc.SchemaName == "" {
		return "", tenant.ErrMissingTenantContext
	}
	return tc.SchemaName, nil
}

// LoggerExtractor returns a function that enriches log records with the
// ambient tenant ID. Plug it into the logger factory's context
// extractors so every log line within a request names its tenant.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tc, ok := Current(ctx); ok {
			return slog.String("tenant_id", tc.TenantID), true
		}
		return slog.Attr{}, false
	}
}
