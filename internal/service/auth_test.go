package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	mocks "github.com/saferide/dispatch-web/internal/mocks/auth"
	"github.com/saferide/dispatch-web/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingLoginStore is a test helper for login store errors.
type failingLoginStore struct {
	mocks.MemoryLoginStore
	saveErr   error
	deleteErr error
}

func (f *failingLoginStore) Save(context.Context, domainauth.Login) error { return f.saveErr }
func (f *failingLoginStore) Delete(context.Context, string) error         { return f.deleteErr }

func newTestAuthService() (*AuthService, *mocks.MockAuthProvider, *mocks.MemoryLoginStore) {
	provider := mocks.NewMockAuthProvider()
	logins := mocks.NewMemoryLoginStore()
	return NewAuthService(AuthServiceOptions{Provider: provider, Logins: logins}), provider, logins
}

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Logins: mocks.NewMemoryLoginStore()}) })
	assert.Panics(t, func() { NewAuthService(AuthServiceOptions{Provider: mocks.NewMockAuthProvider()}) })
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc, provider, _ := newTestAuthService()

	result, err := svc.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	require.ErrorContains(t, err, "redirect URL is required")

	provider.BeginFunc = func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("idp down")
	}
	_, err = svc.BeginLogin(context.Background(), "http://x")
	require.ErrorContains(t, err, "begin auth flow")
}

func TestAuthService_CompleteLogin_PersistsLoginWithoutRole(t *testing.T) {
	svc, provider, logins := newTestAuthService()
	exp := time.Now().Add(2 * time.Hour)
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{
			Subject:    "logto-sub-1",
			Email:      "ada@example.org",
			Name:       "Ada",
			ClaimRoles: []string{"ADMIN"},
			ExpiresAt:  exp,
		}, nil
	}

	login, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.ID)
	assert.Equal(t, "logto-sub-1", login.Subject)
	assert.Equal(t, exp, login.ExpiresAt)

	stored, err := logins.Get(context.Background(), login.ID)
	require.NoError(t, err)
	assert.Equal(t, *login, stored)
}

func TestAuthService_CompleteLogin_CapsLoginAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	provider := mocks.NewMockAuthProvider()
	svc := NewAuthService(AuthServiceOptions{
		Provider:    provider,
		Logins:      mocks.NewMemoryLoginStore(),
		MaxLoginAge: time.Hour,
		Now:         func() time.Time { return now },
	})

	tests := []struct {
		name     string
		provider time.Time
		want     time.Time
	}{
		{name: "provider expiry beyond cap", provider: now.Add(24 * time.Hour), want: now.Add(time.Hour)},
		{name: "provider expiry within cap", provider: now.Add(10 * time.Minute), want: now.Add(10 * time.Minute)},
		{name: "no provider expiry", want: now.Add(time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
				return domainauth.Identity{Subject: "sub", ExpiresAt: tt.provider}, nil
			}
			login, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, login.ExpiresAt)
		})
	}
}

func TestAuthService_CompleteLogin_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  CompleteLoginInput
		setup  func(*mocks.MockAuthProvider)
		errMsg string
	}{
		{name: "missing code", input: CompleteLoginInput{State: "s", Nonce: "n"}, errMsg: "authorization code is required"},
		{name: "missing state", input: CompleteLoginInput{Code: "c", Nonce: "n"}, errMsg: "state parameter is required"},
		{name: "missing nonce", input: CompleteLoginInput{Code: "c", State: "s"}, errMsg: "nonce parameter is required"},
		{
			name:  "exchange fails",
			input: CompleteLoginInput{Code: "c", State: "s", Nonce: "n"},
			setup: func(p *mocks.MockAuthProvider) {
				p.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
					return domainauth.Identity{}, errors.New("bad code")
				}
			},
			errMsg: "exchange authorization code",
		},
		{
			name:  "no subject",
			input: CompleteLoginInput{Code: "c", State: "s", Nonce: "n"},
			setup: func(p *mocks.MockAuthProvider) {
				p.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
					return domainauth.Identity{Email: "x@example.org"}, nil
				}
			},
			errMsg: "no subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider, logins := newTestAuthService()
			if tt.setup != nil {
				tt.setup(provider)
			}
			_, err := svc.CompleteLogin(context.Background(), tt.input)
			require.ErrorContains(t, err, tt.errMsg)
			assert.Zero(t, logins.Len())
		})
	}
}

func TestAuthService_CompleteLogin_SaveFails(t *testing.T) {
	svc := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Logins:   &failingLoginStore{saveErr: errors.New("redis down")},
	})
	_, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.ErrorContains(t, err, "save login")
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, logins := newTestAuthService()
	ctx := context.Background()

	login, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, login.ID))
	assert.Zero(t, logins.Len())
	require.NoError(t, svc.Logout(ctx, ""))

	failing := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Logins:   &failingLoginStore{deleteErr: errors.New("redis down")},
	})
	require.ErrorContains(t, failing.Logout(ctx, "x"), "delete login")
}

func TestAuthService_EndSessionURL(t *testing.T) {
	svc, provider, _ := newTestAuthService()
	assert.Empty(t, svc.EndSessionURL("/"))
	provider.LogoutURL = "https://idp/logout"
	assert.Contains(t, svc.EndSessionURL("/"), "https://idp/logout")
}
