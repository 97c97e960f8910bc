package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	t.Run("basic slugification", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello-world", slug.Make("Hello, World!"))
		assert.Equal(t, "acme-corp-2024", slug.Make("ACME Corp (2024)"))
		assert.Equal(t, "", slug.Make("!!!"))
	})

	t.Run("custom separator", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "acme_corp", slug.Make("Acme Corp", slug.Separator("_")))
	})

	t.Run("diacritics fold to ascii", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "cafe-creme", slug.Make("Café Crème"))
		assert.Equal(t, "uber-gmbh", slug.Make("Über GmbH"))
	})

	t.Run("max length caps output", func(t *testing.T) {
		t.Parallel()

		s := slug.Make("a very long organization name indeed", slug.MaxLength(10))
		assert.LessOrEqual(t, len(s), 10)
	})

	t.Run("random suffix", func(t *testing.T) {
		t.Parallel()

		s := slug.Make("Acme", slug.Separator("_"), slug.WithSuffix(6))
		require.Regexp(t, regexp.MustCompile(`^acme_[a-z0-9]{6}$`), s)

		// Two allocations never collide on the suffix in practice.
		other := slug.Make("Acme", slug.Separator("_"), slug.WithSuffix(6))
		assert.NotEqual(t, s, other)
	})

	t.Run("suffix fits within max length", func(t *testing.T) {
		t.Parallel()

		s := slug.Make("a very long organization name indeed", slug.Separator("_"), slug.WithSuffix(6), slug.MaxLength(20))
		assert.LessOrEqual(t, len(s), 20)
		assert.Regexp(t, regexp.MustCompile(`_[a-z0-9]{6}$`), s)
	})

	t.Run("empty input with suffix yields bare suffix", func(t *testing.T) {
		t.Parallel()

		s := slug.Make("", slug.WithSuffix(6))
		assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{6}$`), s)
	})
}
