// Package jwt implements the token verifier of the tenancy core: a
// minimal, dependency-free HMAC-SHA256 JWT service.
//
// Verify is the validation entry point used by the edge resolver. It
// performs a purely structural and cryptographic check — signature,
// algorithm pinning, temporal claims with a configurable clock skew
// leeway — and never consults the tenant directory or any other
// external state:
//
//	svc, _ := jwt.NewFromString(cfg.SigningKey, jwt.WithLeeway(cfg.Leeway))
//	claims, err := svc.Verify(token)
//	if err != nil {
//	    // reject the request; err is ErrExpiredToken, ErrInvalidSignature, ...
//	}
//	// claims.TenantID and claims.Subject feed tenant context establishment
//
// Generate is kept for token tooling and tests; token issuance UX is
// out of scope for this toolkit.
//
// The extractors (BearerTokenExtractor et al.) cover the supported
// token transports and are consumed by svc/gateway.
package jwt
