// Package gateway is the edge resolver sitting in front of all
// tenant-scoped services.
//
// For every inbound request it verifies the bearer token, resolves the
// token's tenant against the directory, establishes the tenant context,
// and forwards the request upstream carrying HMAC-signed internal
// identity headers. Downstream services re-establish the context from
// those headers with Reestablish — one directory lookup per request,
// at the edge, never per hop.
//
// Rejections are deliberate about information leakage: an unknown
// tenant reads the same as a bad token (401), while a suspended tenant
// is a 403 because the credential itself verified.
package gateway
