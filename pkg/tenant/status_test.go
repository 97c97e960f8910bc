package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	all := []tenant.Status{
		tenant.StatusPending,
		tenant.StatusActive,
		tenant.StatusSuspended,
		tenant.StatusDeleting,
		tenant.StatusDeleted,
	}

	legal := map[tenant.Status][]tenant.Status{
		tenant.StatusPending:   {tenant.StatusActive, tenant.StatusDeleted},
		tenant.StatusActive:    {tenant.StatusSuspended, tenant.StatusDeleting},
		tenant.StatusSuspended: {tenant.StatusActive, tenant.StatusDeleting},
		tenant.StatusDeleting:  {tenant.StatusDeleted},
		tenant.StatusDeleted:   {},
	}

	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, allowed := range legal[from] {
				if allowed == to {
					expected = true
				}
			}
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.StatusDeleted.IsTerminal())
	assert.False(t, tenant.StatusPending.IsTerminal())
	assert.False(t, tenant.StatusActive.IsTerminal())
	assert.False(t, tenant.StatusSuspended.IsTerminal())
	assert.False(t, tenant.StatusDeleting.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	t.Run("known statuses", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"pending", "active", "suspended", "deleting", "deleted"} {
			st, err := tenant.ParseStatus(s)
			require.NoError(t, err)
			assert.Equal(t, tenant.Status(s), st)
			assert.True(t, st.IsValid())
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.ParseStatus("archived")
		assert.Error(t, err)

		assert.False(t, tenant.Status("ACTIVE").IsValid())
	})
}

func TestIllegalTransitionError(t *testing.T) {
	t.Parallel()

	err := tenant.NewIllegalTransitionError(tenant.StatusDeleted, tenant.StatusActive)
	assert.True(t, tenant.IsIllegalTransitionError(err))
	assert.Contains(t, err.Error(), "deleted")
	assert.Contains(t, err.Error(), "active")

	assert.False(t, tenant.IsIllegalTransitionError(tenant.ErrTenantNotFound))
}
