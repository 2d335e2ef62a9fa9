//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
)

// RoleAssignment is a row of the authoritative role store.
type RoleAssignment struct {
	Subject   string    `db:"subject"    json:"subject"`
	Role      string    `db:"role"       json:"role"`
	Email     *string   `db:"email"      json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RoleChange is an audit entry written whenever an assignment is set or removed.
type RoleChange struct {
	ID        int64     `db:"id"         json:"id"`
	Subject   string    `db:"subject"    json:"subject"`
	OldRole   *string   `db:"old_role"   json:"oldRole"`
	NewRole   *string   `db:"new_role"   json:"newRole"`
	ChangedBy string    `db:"changed_by" json:"changedBy"`
	ChangedAt time.Time `db:"changed_at" json:"changedAt"`
}

// SetRoleRequest assigns Role to Subject. ChangedBy identifies the operator for the audit log.
type SetRoleRequest struct {
	Subject   string `validate:"required,max=255"`
	Role      string `validate:"required,oneof=ADMIN DISPATCHER DRIVER MEMBER"`
	Email     string `validate:"omitempty,email,max=320"`
	ChangedBy string `validate:"required,max=255"`
}

// Normalize trims whitespace and upper-cases the role.
func (r *SetRoleRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
	r.Email = strings.TrimSpace(r.Email)
	r.ChangedBy = strings.TrimSpace(r.ChangedBy)
}

// ListRolesOptions filters and pages role assignments.
type ListRolesOptions struct {
	Role   domainauth.Role
	Limit  int
	Offset int
}
