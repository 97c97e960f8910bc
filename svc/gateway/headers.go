package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Internal header names carrying the resolved tenant identity across
// the trusted perimeter. The gateway strips any inbound occurrence
// before setting its own, so clients cannot inject them.
const (
	HeaderTenantID  = "X-Internal-Tenant-ID"
	HeaderSchema    = "X-Internal-Schema"
	HeaderSubject   = "X-Internal-Subject"
	HeaderTimestamp = "X-Internal-Ts"
	HeaderSignature = "X-Internal-Signature"
)

var internalHeaders = []string{
	HeaderTenantID, HeaderSchema, HeaderSubject, HeaderTimestamp, HeaderSignature,
}

var (
	ErrInvalidInternalHeaders = errors.New("gateway: invalid internal headers")
	ErrStaleInternalHeaders   = errors.New("gateway: internal headers expired")
)

// Identity is the tenant binding the gateway resolved for a request.
type Identity struct {
	TenantID   string
	SchemaName string
	SubjectID  string
	IssuedAt   time.Time
}

// Signer signs and verifies the internal tenant headers so downstream
// services can trust the resolved identity without querying the tenant
// directory themselves.
type Signer struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// SignerOption configures the Signer.
type SignerOption func(*Signer)

// WithHeaderMaxAge bounds the header validity window. Non-positive
// values are ignored.
func WithHeaderMaxAge(d time.Duration) SignerOption {
	return func(s *Signer) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithSignerClock overrides the time source. Intended for tests.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSigner creates a Signer with the given HMAC key.
func NewSigner(key []byte, opts ...SignerOption) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("gateway: missing internal signing key")
	}
	s := &Signer{
		key:    key,
		maxAge: time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign stamps the request with the identity and its signature,
// replacing any inbound internal headers wholesale.
func (s *Signer) Sign(h http.Header, id Identity) {
	StripInternalHeaders(h)

	ts := strconv.FormatInt(s.now().Unix(), 10)
	h.Set(HeaderTenantID, id.TenantID)
	h.Set(HeaderSchema, id.SchemaName)
	h.Set(HeaderSubject, id.SubjectID)
	h.Set(HeaderTimestamp, ts)
	h.Set(HeaderSignature, s.signature(id.TenantID, id.SchemaName, id.SubjectID, ts))
}

// Verify validates the internal headers and returns the identity they
// carry. Missing or tampered headers fail with
// ErrInvalidInternalHeaders; headers older than the max age fail with
// ErrStaleInternalHeaders.
func (s *Signer) Verify(h http.Header) (Identity, error) {
	tenantID := h.Get(HeaderTenantID)
	schemaName := h.Get(HeaderSchema)
	subjectID := h.Get(HeaderSubject)
	ts := h.Get(HeaderTimestamp)
	sig := h.Get(HeaderSignature)

	if tenantID == "" || schemaName == "" || ts == "" || sig == "" {
		return Identity{}, ErrInvalidInternalHeaders
	}

	expected := s.signature(tenantID, schemaName, subjectID, ts)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return Identity{}, ErrInvalidInternalHeaders
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidInternalHeaders
	}
	issuedAt := time.Unix(unix, 0)
	if s.now().Sub(issuedAt) > s.maxAge {
		return Identity{}, ErrStaleInternalHeaders
	}

	return Identity{
		TenantID:   tenantID,
		SchemaName: schemaName,
		SubjectID:  subjectID,
		IssuedAt:   issuedAt,
	}, nil
}

// signature computes the HMAC over the canonical header payload. The
// newline separator keeps field boundaries unambiguous.
func (s *Signer) signature(tenantID, schemaName, subjectID, ts string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strings.Join([]string{tenantID, schemaName, subjectID, ts}, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// StripInternalHeaders removes every internal tenant header. Applied to
// all inbound edge traffic so external callers can never smuggle a
// tenant identity past resolution.
func StripInternalHeaders(h http.Header) {
	for _, name := range internalHeaders {
		h.Del(name)
	}
}
