package oidc

// Package oidc provides the OIDC/OAuth2 adapters used to sign members in through
// the identity provider (Logto) and to verify bearer access tokens it issues.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider and ports.TokenVerifier using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	resource   string
	endSession string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	// accessVerifier checks access tokens minted for the API resource; nil when no resource is configured.
	accessVerifier *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	// Resource is the API resource indicator requested at sign-in and expected as
	// the audience of bearer access tokens.
	Resource string
	// LogoutURL overrides the discovered end_session_endpoint.
	LogoutURL  string
	HTTPClient *http.Client // Optional, defaults to a 30s client
}

// DiscoveryDocument represents the subset of the OIDC discovery document we read.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
}

// NewProvider creates a new OIDC provider, performing discovery once.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		resource:   config.Resource,
		httpClient: httpClient,
	}

	ctx := gooidc.ClientContext(context.Background(), httpClient)
	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(config.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})
	if config.Resource != "" {
		p.accessVerifier = op.Verifier(&gooidc.Config{ClientID: config.Resource})
	}

	var doc DiscoveryDocument
	if claimsErr := op.Claims(&doc); claimsErr != nil {
		return nil, fmt.Errorf("decode discovery document: %w", claimsErr)
	}
	p.endSession = firstNonEmpty(config.LogoutURL, doc.EndSessionEndpoint)

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// issuerFromDiscoveryURL accepts either an issuer or its well-known document URL.
func issuerFromDiscoveryURL(discoveryURL string) string {
	issuer := strings.TrimSuffix(discoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, ".well-known/openid-configuration")
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri comes from the configured RedirectURL and must match it exactly.
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "login"),
	}
	if p.resource != "" {
		opts = append(opts, oauth2.SetAuthURLParam("resource", p.resource))
	}

	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if fields.subject == "" || fields.email == "" {
		if fillErr := p.fillFromUserInfo(ctx, token.AccessToken, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if fields.subject == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return fields.identity(expiresAt), nil
}

// VerifyAccessToken validates a bearer access token against the provider's keys,
// issuer and the configured API resource audience.
func (p *Provider) VerifyAccessToken(ctx context.Context, raw string) (domainauth.Identity, error) {
	if p.accessVerifier == nil {
		return domainauth.Identity{}, errors.New("bearer tokens are not accepted: no API resource configured")
	}
	if raw == "" {
		return domainauth.Identity{}, errors.New("empty bearer token")
	}

	tok, err := p.accessVerifier.Verify(gooidc.ClientContext(ctx, p.httpClient), raw)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify access token: %w", err)
	}
	var c logtoClaims
	if claimsErr := tok.Claims(&c); claimsErr != nil {
		return domainauth.Identity{}, fmt.Errorf("parse access token claims: %w", claimsErr)
	}
	f := mapClaims(c)
	if f.subject == "" {
		return domainauth.Identity{}, errors.New("access token has no subject")
	}
	return f.identity(tok.Expiry), nil
}

// EndSessionURL returns the provider sign-out URL for the given post-logout redirect.
func (p *Provider) EndSessionURL(postLogoutRedirect string) string {
	if p.endSession == "" {
		return ""
	}
	u, err := url.Parse(p.endSession)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("client_id", p.config.ClientID)
	if postLogoutRedirect != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirect)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *Provider) getUserInfo(ctx context.Context, accessToken string) (logtoClaims, error) {
	var c logtoClaims
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return c, fmt.Errorf("fetch user info: %w", err)
	}
	if claimsErr := ui.Claims(&c); claimsErr != nil {
		return c, fmt.Errorf("decode user info: %w", claimsErr)
	}
	return c, nil
}

type idFields struct {
	subject string
	email   string
	name    string
	roles   []string
}

func (f idFields) identity(expiresAt time.Time) domainauth.Identity {
	return domainauth.Identity{
		Subject:    f.subject,
		Email:      f.email,
		Name:       f.name,
		ClaimRoles: f.roles,
		ExpiresAt:  expiresAt,
	}
}

func (p *Provider) extractFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (idFields, error) {
	var f idFields
	if !p.hasOpenIDScope() {
		return f, nil
	}
	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}
	var claims logtoClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return f, errors.New("invalid nonce")
	}
	return mapClaims(claims), nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, f *idFields) error {
	ui, err := p.getUserInfo(ctx, accessToken)
	if err != nil {
		return err
	}
	fillFromUserInfoClaims(f, ui)
	return nil
}

// logtoClaims is the claim shape Logto emits in ID tokens, access tokens and userinfo.
type logtoClaims struct {
	Sub               string   `json:"sub"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	Username          string   `json:"username"`
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
	Nonce             string   `json:"nonce"`
}

func mapClaims(c logtoClaims) idFields {
	return idFields{
		subject: c.Sub,
		email:   c.Email,
		name:    firstNonEmpty(c.Name, c.Username, c.PreferredUsername),
		roles:   c.Roles,
	}
}

// fillFromUserInfoClaims fills only the fields still missing after ID token mapping.
func fillFromUserInfoClaims(f *idFields, ui logtoClaims) {
	u := mapClaims(ui)
	if f.subject == "" {
		f.subject = u.subject
	}
	if f.email == "" {
		f.email = u.email
	}
	if f.name == "" {
		f.name = u.name
	}
	if len(f.roles) == 0 {
		f.roles = u.roles
	}
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
