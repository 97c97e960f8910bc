package gateway

import "time"

// Config holds the edge resolver settings.
type Config struct {
	// JWTSigningKey verifies the bearer tokens issued to end users.
	JWTSigningKey string `env:"GATEWAY_JWT_SIGNING_KEY,required"`
	// JWTLeeway is the clock skew tolerance for token temporal claims.
	JWTLeeway time.Duration `env:"GATEWAY_JWT_LEEWAY" envDefault:"30s"`
	// InternalSigningKey signs the internal tenant headers attached to
	// forwarded requests. It never leaves the trusted perimeter.
	InternalSigningKey string `env:"GATEWAY_INTERNAL_SIGNING_KEY,required"`
	// HeaderMaxAge bounds how long signed internal headers stay valid.
	HeaderMaxAge time.Duration `env:"GATEWAY_HEADER_MAX_AGE" envDefault:"1m"`
	// ResolveTimeout caps the per-request tenant directory resolution.
	ResolveTimeout time.Duration `env:"GATEWAY_RESOLVE_TIMEOUT" envDefault:"2s"`
	// UpstreamURL is the internal service requests are forwarded to.
	UpstreamURL string `env:"GATEWAY_UPSTREAM_URL"`
}
