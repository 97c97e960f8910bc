package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/tenantkit/pkg/async"
	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
	"github.com/dmitrymomot/tenantkit/pkg/jwt"
	"github.com/dmitrymomot/tenantkit/pkg/requestid"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/tenantctx"
)

// Resolver resolves a tenant identifier to its directory record.
// Satisfied by *directory.Directory.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (tenant.Record, error)
}

// Gateway is the edge resolver: it authenticates bearer tokens,
// resolves the tenant, establishes the tenant context, and forwards the
// request upstream with signed internal identity headers.
type Gateway struct {
	verifier       *jwt.Service
	resolver       Resolver
	signer         *Signer
	extract        jwt.TokenExtractorFunc
	resolveTimeout time.Duration
	log            *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithTokenExtractor replaces the default Authorization bearer
// extractor.
func WithTokenExtractor(fn jwt.TokenExtractorFunc) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.extract = fn
		}
	}
}

// WithResolveTimeout caps how long a single request waits on directory
// resolution. Non-positive values are ignored.
func WithResolveTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.resolveTimeout = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a Gateway over the given verifier, resolver and signer.
func New(verifier *jwt.Service, resolver Resolver, signer *Signer, opts ...Option) *Gateway {
	g := &Gateway{
		verifier:       verifier,
		resolver:       resolver,
		signer:         signer,
		extract:        jwt.BearerTokenExtractor,
		resolveTimeout: 2 * time.Second,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromConfig builds a Gateway and its collaborators from cfg.
func NewFromConfig(cfg Config, resolver Resolver, opts ...Option) (*Gateway, error) {
	verifier, err := jwt.NewFromString(cfg.JWTSigningKey, jwt.WithLeeway(cfg.JWTLeeway))
	if err != nil {
		return nil, fmt.Errorf("gateway: token verifier: %w", err)
	}
	signer, err := NewSigner([]byte(cfg.InternalSigningKey), WithHeaderMaxAge(cfg.HeaderMaxAge))
	if err != nil {
		return nil, err
	}
	base := []Option{WithResolveTimeout(cfg.ResolveTimeout)}
	return New(verifier, resolver, signer, append(base, opts...)...), nil
}

// Handler returns the full edge handler forwarding resolved requests to
// upstream. Health probes bypass tenant resolution.
func (g *Gateway) Handler(upstream *url.URL) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.log.ErrorContext(r.Context(), "upstream request failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Get("/healthz", httpserver.HealthCheckHandler(g.log))
	r.Handle("/*", g.Middleware()(proxy))
	return r
}

// Middleware returns the resolution middleware: it verifies the bearer
// token, resolves the tenant, establishes the tenant context on the
// request, and signs the internal identity headers. Requests that fail
// any step are rejected here and never reach the next handler.
func (g *Gateway) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Inbound internal headers are dropped unconditionally; only
			// this middleware may set them.
			StripInternalHeaders(r.Header)

			token, err := g.extract(r)
			if err != nil {
				respondRejection(ctx, g.log, w, err)
				return
			}

			claims, err := g.verifier.Verify(token)
			if err != nil {
				respondRejection(ctx, g.log, w, err)
				return
			}
			if claims.TenantID == "" {
				respondRejection(ctx, g.log, w, jwt.ErrInvalidToken)
				return
			}

			rec, err := g.resolve(ctx, claims.TenantID)
			if err != nil {
				respondRejection(ctx, g.log, w, err)
				return
			}

			tc := tenantctx.Context{
				TenantID:   rec.ID,
				SchemaName: rec.SchemaName,
				SubjectID:  claims.Subject,
				IssuedAt:   time.Now(),
			}
			ctx, err = tenantctx.Establish(ctx, tc)
			if err != nil {
				respondRejection(ctx, g.log, w, err)
				return
			}

			g.signer.Sign(r.Header, Identity{
				TenantID:   tc.TenantID,
				SchemaName: tc.SchemaName,
				SubjectID:  tc.SubjectID,
				IssuedAt:   tc.IssuedAt,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve looks the tenant up off the request goroutine with a bounded
// wait. The lookup inherits the request context, so cancellation still
// reaches the directory.
func (g *Gateway) resolve(ctx context.Context, tenantID string) (tenant.Record, error) {
	future := async.Async(ctx, tenantID, g.resolver.Resolve)
	return future.AwaitWithTimeout(g.resolveTimeout)
}
