package database

import "github.com/fretline/buildtrack-api/internal/domain/entity"

// DefaultPermissions returns every permission name the application gates
// routes on.
func DefaultPermissions() []string {
	return []string{
		"view-dashboard",
		"manage-runs",
		"manage-guitars",
		"advance-stages",
		"manage-notes",
		"manage-photos",
		"manage-clients",
		"manage-invoices",
		"record-payments",
		"manage-custom-shop",
		"manage-users",
		"manage-settings",
		"send-test-email",
		"view-client-portal",
	}
}

// DefaultRolePermissions maps each seeded role to its permission names. The
// role set is closed: these five roles are the only ones the application
// recognizes. Staff run the workshop day to day, so they carry user,
// invoice and test-email rights alongside production; settings stay with
// admin.
func DefaultRolePermissions() map[string][]string {
	return map[string][]string{
		entity.RoleAdmin: DefaultPermissions(),
		entity.RoleStaff: {
			"view-dashboard",
			"manage-runs",
			"manage-guitars",
			"advance-stages",
			"manage-notes",
			"manage-photos",
			"manage-clients",
			"manage-invoices",
			"record-payments",
			"manage-custom-shop",
			"manage-users",
			"send-test-email",
		},
		entity.RoleFactory: {
			"view-dashboard",
			"advance-stages",
			"manage-notes",
			"manage-photos",
		},
		entity.RoleAccounting: {
			"view-dashboard",
			"manage-invoices",
			"record-payments",
		},
		entity.RoleClient: {
			"view-client-portal",
		},
	}
}
