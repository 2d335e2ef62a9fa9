//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Member is a person belonging to the organisation.
type Member struct {
	ID string `json:"id"`
	// Subject is the identity-provider subject. Empty means ID is the subject.
	Subject  string    `json:"subject,omitempty"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// SubjectID returns the identity-provider subject the role store is keyed by.
func (m Member) SubjectID() string {
	if m.Subject != "" {
		return m.Subject
	}
	return m.ID
}

// MemberFilter narrows GetMembers. Empty fields do not filter.
type MemberFilter struct {
	Search string `validate:"max=120"`
	Role   string `validate:"omitempty,oneof=ADMIN DISPATCHER DRIVER MEMBER"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN DISPATCHER DRIVER MEMBER"`
}
