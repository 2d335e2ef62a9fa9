package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Logins   ports.LoginStore
	// MaxLoginAge caps a login record's lifetime; zero keeps the provider's expiry.
	MaxLoginAge time.Duration
	Now         func() time.Time
}

// AuthService orchestrates sign-in and sign-out against the identity provider
// and persists login records. It never assigns roles.
type AuthService struct {
	provider ports.AuthProvider
	logins   ports.LoginStore
	maxAge   time.Duration
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Provider == nil {
		panic("AuthService requires a Provider")
	}
	if opts.Logins == nil {
		panic("AuthService requires a LoginStore")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{provider: opts.Provider, logins: opts.Logins, maxAge: opts.MaxLoginAge, now: now}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity and persists a login record.
// The returned Login.ID is the value for the session cookie.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Login, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if identity.Subject == "" {
		return nil, errors.New("identity provider returned no subject")
	}

	login := domainauth.Login{
		ID:        uuid.NewString(),
		Subject:   identity.Subject,
		Email:     identity.Email,
		Name:      identity.Name,
		ExpiresAt: s.loginExpiry(identity.ExpiresAt),
	}
	if saveErr := s.logins.Save(ctx, login); saveErr != nil {
		return nil, fmt.Errorf("save login: %w", saveErr)
	}

	return &login, nil
}

func (s *AuthService) loginExpiry(providerExpiry time.Time) time.Time {
	if s.maxAge <= 0 {
		return providerExpiry
	}
	limit := s.now().Add(s.maxAge)
	if providerExpiry.IsZero() || providerExpiry.After(limit) {
		return limit
	}
	return providerExpiry
}

// Logout removes a login record. An empty ID is a no-op.
func (s *AuthService) Logout(ctx context.Context, loginID string) error {
	if loginID == "" {
		return nil
	}
	if err := s.logins.Delete(ctx, loginID); err != nil {
		return fmt.Errorf("delete login: %w", err)
	}
	return nil
}

// EndSessionURL returns where to send the browser after local sign-out, or "" to stay local.
func (s *AuthService) EndSessionURL(postLogoutRedirect string) string {
	return s.provider.EndSessionURL(postLogoutRedirect)
}
