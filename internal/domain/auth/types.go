package auth

// Package auth contains domain-level types for authentication, sessions and authorization.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a member's authorization role within a dispatch organisation.
// The string form is what the role store and the backend persist.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleDriver     Role = "DRIVER"
	RoleMember     Role = "MEMBER"
)

// Roles returns every known role, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDispatcher, RoleDriver, RoleMember}
}

// ParseRole converts a stored role string into a Role.
// Unlike a least-privilege fallback, unknown values are rejected so callers
// can surface an unresolved role instead of guessing one.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDispatcher, RoleDriver, RoleMember:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// Identity represents the authenticated principal returned by the identity provider.
// ClaimRoles is informational only; it may lag the role store.
type Identity struct {
	Subject    string
	Email      string
	Name       string
	ClaimRoles []string
	ExpiresAt  time.Time
}

// Login is the server-side record persisted after a successful sign-in.
// ID is the opaque value stored in the session cookie. It deliberately carries no role.
type Login struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the login has passed its expiry at the given instant.
func (l Login) Expired(now time.Time) bool { return !now.Before(l.ExpiresAt) }

// Session is the identity and role resolved for a single request. It is never persisted.
type Session struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	Email     string
	Name      string
	// LoginID is empty when the request authenticated with a bearer token.
	LoginID string
}

// Can reports whether the session's role grants the capability.
func (s Session) Can(c Capability) bool { return CanPerform(s.Role, c) }
