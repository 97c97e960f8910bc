package gateway_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/svc/gateway"
)

const testInternalKey = "internal-signing-key-32-bytes-min"

func TestSignerRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := gateway.NewSigner([]byte(testInternalKey))
	require.NoError(t, err)

	h := http.Header{}
	signer.Sign(h, gateway.Identity{
		TenantID:   "acme",
		SchemaName: "t_acme_x1y2z3",
		SubjectID:  "user-1",
	})

	id, err := signer.Verify(h)
	require.NoError(t, err)
	assert.Equal(t, "acme", id.TenantID)
	assert.Equal(t, "t_acme_x1y2z3", id.SchemaName)
	assert.Equal(t, "user-1", id.SubjectID)
}

func TestSignerRejections(t *testing.T) {
	t.Parallel()

	signer, err := gateway.NewSigner([]byte(testInternalKey))
	require.NoError(t, err)

	signedHeaders := func(t *testing.T) http.Header {
		t.Helper()
		h := http.Header{}
		signer.Sign(h, gateway.Identity{TenantID: "acme", SchemaName: "t_acme", SubjectID: "user-1"})
		return h
	}

	t.Run("missing headers", func(t *testing.T) {
		t.Parallel()

		_, err := signer.Verify(http.Header{})
		assert.ErrorIs(t, err, gateway.ErrInvalidInternalHeaders)
	})

	t.Run("tampered tenant id", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(t)
		h.Set(gateway.HeaderTenantID, "globex")

		_, err := signer.Verify(h)
		assert.ErrorIs(t, err, gateway.ErrInvalidInternalHeaders)
	})

	t.Run("tampered schema", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(t)
		h.Set(gateway.HeaderSchema, "public")

		_, err := signer.Verify(h)
		assert.ErrorIs(t, err, gateway.ErrInvalidInternalHeaders)
	})

	t.Run("tampered signature", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(t)
		h.Set(gateway.HeaderSignature, "deadbeef")

		_, err := signer.Verify(h)
		assert.ErrorIs(t, err, gateway.ErrInvalidInternalHeaders)
	})

	t.Run("key mismatch", func(t *testing.T) {
		t.Parallel()

		other, err := gateway.NewSigner([]byte("another-key-entirely-32-bytes-xx"))
		require.NoError(t, err)

		_, err = other.Verify(signedHeaders(t))
		assert.ErrorIs(t, err, gateway.ErrInvalidInternalHeaders)
	})

	t.Run("stale headers", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		signer, err := gateway.NewSigner([]byte(testInternalKey),
			gateway.WithHeaderMaxAge(time.Minute),
			gateway.WithSignerClock(func() time.Time { return now }))
		require.NoError(t, err)

		h := http.Header{}
		signer.Sign(h, gateway.Identity{TenantID: "acme", SchemaName: "t_acme"})

		now = now.Add(2 * time.Minute)
		_, err = signer.Verify(h)
		assert.ErrorIs(t, err, gateway.ErrStaleInternalHeaders)
	})
}

func TestStripInternalHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set(gateway.HeaderTenantID, "smuggled")
	h.Set(gateway.HeaderSchema, "public")
	h.Set(gateway.HeaderSignature, "forged")
	h.Set("X-Other", "kept")

	gateway.StripInternalHeaders(h)

	assert.Empty(t, h.Get(gateway.HeaderTenantID))
	assert.Empty(t, h.Get(gateway.HeaderSchema))
	assert.Empty(t, h.Get(gateway.HeaderSignature))
	assert.Equal(t, "kept", h.Get("X-Other"))
}
