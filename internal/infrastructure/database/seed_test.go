package database

import (
	"testing"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleGrantsCoverGatedRoutes(t *testing.T) {
	grants := DefaultRolePermissions()

	// Staff run the workshop day to day: user management, invoicing and
	// email verification are theirs as well as production.
	staff := grants[entity.RoleStaff]
	for _, p := range []string{
		"manage-users",
		"manage-invoices",
		"record-payments",
		"send-test-email",
		"manage-runs",
		"manage-guitars",
		"advance-stages",
	} {
		assert.Contains(t, staff, p)
	}
	assert.NotContains(t, staff, "manage-settings")

	assert.Contains(t, grants[entity.RoleAccounting], "manage-invoices")
	assert.Contains(t, grants[entity.RoleAccounting], "record-payments")

	assert.Equal(t, []string{"view-client-portal"}, grants[entity.RoleClient])

	assert.NotContains(t, grants[entity.RoleFactory], "manage-clients")
}

func TestRoleGrantsUseKnownPermissions(t *testing.T) {
	known := make(map[string]bool)
	for _, name := range DefaultPermissions() {
		known[name] = true
	}

	for role, names := range DefaultRolePermissions() {
		for _, name := range names {
			require.Truef(t, known[name], "role %s grants unseeded permission %s", role, name)
		}
	}
}
