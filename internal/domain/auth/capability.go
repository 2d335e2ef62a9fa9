package auth

// Capability names a permission checked against a Role.
type Capability string

const (
	CapManageOperations Capability = "manage-operations"
	CapManageMembers    Capability = "manage-members"
	CapDrive            Capability = "drive"
	CapViewShifts       Capability = "view-shifts"
	CapViewDomains      Capability = "view-domains"
)

// Capabilities returns every capability the application checks.
func Capabilities() []Capability {
	return []Capability{CapManageOperations, CapManageMembers, CapDrive, CapViewShifts, CapViewDomains}
}

// roleMatrix lists, per capability, every role that holds it. A pair absent
// from the matrix is denied; there is no default grant.
//
//nolint:gochecknoglobals // read-only policy table
var roleMatrix = map[Capability][]Role{
	CapManageOperations: {RoleAdmin, RoleDispatcher},
	CapManageMembers:    {RoleAdmin},
	CapDrive:            {RoleAdmin, RoleDispatcher, RoleDriver},
	CapViewShifts:       {RoleAdmin, RoleDispatcher, RoleDriver, RoleMember},
	CapViewDomains:      {RoleAdmin},
}

// CanPerform reports whether role holds capability. It is pure and total:
// unknown roles and unknown capabilities are always denied.
func CanPerform(role Role, c Capability) bool {
	for _, r := range roleMatrix[c] {
		if r == role {
			return true
		}
	}
	return false
}

// CanManageOperations reports whether role has operational authority (dispatcher/admin tier).
func CanManageOperations(role Role) bool {
	return CanPerform(role, CapManageOperations)
}
