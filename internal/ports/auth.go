package ports

// Package ports defines interfaces (hexagonal ports) for auth and backend behavior.
// Implementations live in internal/adapters, internal/data and internal/backend;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)

	// EndSessionURL returns the provider sign-out URL, or "" when the provider has none.
	EndSessionURL(postLogoutRedirect string) string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// TokenVerifier validates bearer access tokens issued by the IdP for this API.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, raw string) (domainauth.Identity, error)
}

// LoginStore persists login records keyed by the opaque session cookie value.
// Get returns a NotFound AppError for unknown or expired records.
type LoginStore interface {
	Save(ctx context.Context, login domainauth.Login) error
	Get(ctx context.Context, id string) (domainauth.Login, error)
	Delete(ctx context.Context, id string) error
}

// RoleStore is the authoritative source of a member's role.
type RoleStore interface {
	// RoleFor returns the stored role for subject. A missing row is a NotFound AppError.
	RoleFor(ctx context.Context, subject string) (domainauth.Role, error)
}

// RoleWriter updates the role store. Member role changes made through the
// dashboard are written here after the backend accepts them.
type RoleWriter interface {
	Set(ctx context.Context, req model.SetRoleRequest) (*model.RoleAssignment, error)
	// Delete reports whether an assignment existed.
	Delete(ctx context.Context, subject, changedBy string) (bool, error)
}
