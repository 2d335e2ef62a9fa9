package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/ports"
)

// Config controls the dev auth provider behavior.
// Subject and Email are required. BearerToken, when set, is accepted by
// VerifyAccessToken as the dev identity's access token.
type Config struct {
	Subject         string
	Email           string
	Name            string
	BearerToken     string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider and ports.TokenVerifier for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce.
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev auth: Subject is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	return &Provider{cfg: cfg}, nil
}

func (p *Provider) identity() domainauth.Identity {
	return domainauth.Identity{
		Subject:   p.cfg.Subject,
		Email:     p.cfg.Email,
		Name:      p.cfg.Name,
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return p.identity(), nil
}

// EndSessionURL is empty: there is no upstream session to end.
func (p *Provider) EndSessionURL(string) string { return "" }

// VerifyAccessToken accepts only the configured dev bearer token.
func (p *Provider) VerifyAccessToken(_ context.Context, raw string) (domainauth.Identity, error) {
	if p.cfg.BearerToken == "" || subtle.ConstantTimeCompare([]byte(raw), []byte(p.cfg.BearerToken)) != 1 {
		return domainauth.Identity{}, errors.New("dev auth: bearer token rejected")
	}
	return p.identity(), nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
