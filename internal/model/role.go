package model

import "strings"

// Fixed role ids created by the seed step.
const (
	RoleIDAdmin    int64 = 1
	RoleIDLandlord int64 = 2
	RoleIDTenant   int64 = 3
)

// RoleKind is the closed set of permission tiers. Roles created at runtime
// with any other name resolve to RoleUnknown and carry no privileges.
type RoleKind int

const (
	RoleUnknown RoleKind = iota
	RoleAdmin
	RoleLandlord
	RoleTenant
)

func (k RoleKind) String() string {
	switch k {
	case RoleAdmin:
		return "Admin"
	case RoleLandlord:
		return "Landlord"
	case RoleTenant:
		return "Tenant"
	default:
		return "Unknown"
	}
}

// ParseRoleKind resolves a role name case-insensitively.
func ParseRoleKind(name string) RoleKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin":
		return RoleAdmin
	case "landlord":
		return RoleLandlord
	case "tenant":
		return RoleTenant
	default:
		return RoleUnknown
	}
}

// Role represents the roles table
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Kind resolves the role name to its closed variant.
func (r Role) Kind() RoleKind {
	return ParseRoleKind(r.Name)
}

// SeedRoles are the roles created at setup time, in id order.
func SeedRoles() []Role {
	return []Role{
		{ID: RoleIDAdmin, Name: RoleAdmin.String()},
		{ID: RoleIDLandlord, Name: RoleLandlord.String()},
		{ID: RoleIDTenant, Name: RoleTenant.String()},
	}
}
