package jwt

import "time"

// Claims is the decoded payload of an access token: the authenticated
// subject, the tenant the token is bound to, and the registered
// temporal claims from RFC 7519 Section 4.1 as Unix timestamps.
// Claims exist only to establish a tenant context and are not retained
// beyond that.
type Claims struct {
	ID        string   `json:"jti,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	TenantID  string   `json:"tid,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Issuer    string   `json:"iss,omitempty"`
	Audience  string   `json:"aud,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
}

// ValidAt validates the temporal claims against the given time with a
// clock skew margin. Zero values are treated as unset per RFC 7519 and
// are ignored.
func (c Claims) ValidAt(now time.Time, leeway time.Duration) error {
	ts := now.Unix()

	if c.ExpiresAt > 0 && ts > c.ExpiresAt+int64(leeway.Seconds()) {
		return ErrExpiredToken
	}

	if c.NotBefore > 0 && ts < c.NotBefore-int64(leeway.Seconds()) {
		return ErrInvalidToken
	}

	return nil
}
