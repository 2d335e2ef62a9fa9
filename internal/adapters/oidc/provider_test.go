package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saferide/dispatch-web/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testResource = "https://api.dispatch.test"

// fakeIssuer serves discovery and JWKS documents for a signing key it owns.
type fakeIssuer struct {
	srv *httptest.Server
	key *rsa.PrivateKey
}

func newFakeIssuer(t *testing.T, endSession string) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	fi := &fakeIssuer{key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:                fi.srv.URL,
			AuthorizationEndpoint: "https://example.com/auth",
			TokenEndpoint:         "https://example.com/token",
			UserinfoEndpoint:      "https://example.com/userinfo",
			JwksURI:               fi.srv.URL + "/jwks",
			EndSessionEndpoint:    endSession,
		})
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	})
	fi.srv = httptest.NewServer(mux)
	t.Cleanup(fi.srv.Close)
	return fi
}

func (fi *fakeIssuer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	raw, err := tok.SignedString(fi.key)
	require.NoError(t, err)
	return raw
}

func (fi *fakeIssuer) providerConfig() ProviderConfig {
	return ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email roles",
		DiscoveryURL: fi.srv.URL + "/.well-known/openid-configuration",
		Resource:     testResource,
	}
}

func createTestProvider(t *testing.T) (*Provider, *fakeIssuer) {
	t.Helper()
	fi := newFakeIssuer(t, "https://tenant.logto.test/oidc/session/end")
	provider, err := NewProvider(fi.providerConfig())
	require.NoError(t, err)
	return provider, fi
}

func TestNewProvider_Success(t *testing.T) {
	provider, _ := createTestProvider(t)
	assert.Equal(t, "https://example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://example.com/token", provider.config.Endpoint.TokenURL)
	assert.NotNil(t, provider.accessVerifier)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", RedirectURL: "http://localhost/callback", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", RedirectURL: "http://localhost/callback", DiscoveryURL: "http://example.com"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/callback"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIssuerFromDiscoveryURL(t *testing.T) {
	assert.Equal(t, "https://t.logto.app/oidc", issuerFromDiscoveryURL("https://t.logto.app/oidc/.well-known/openid-configuration"))
	assert.Equal(t, "https://t.logto.app/oidc", issuerFromDiscoveryURL("https://t.logto.app/oidc/"))
}

func TestProvider_Begin(t *testing.T) {
	provider, _ := createTestProvider(t)

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "http://localhost:8080/auth/callback"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, testResource, q.Get("resource"))
}

func TestProvider_Begin_EmptyRedirectURL(t *testing.T) {
	provider, _ := createTestProvider(t)

	_, _, _, err := provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider, _ := createTestProvider(t)

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{"missing code", ports.ExchangeInput{State: "state", Nonce: "nonce"}, "authorization code is required"},
		{"missing state", ports.ExchangeInput{Code: "code", Nonce: "nonce"}, "state is required"},
		{"missing nonce", ports.ExchangeInput{Code: "code", State: "state"}, "nonce is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Exchange_TokenEndpointUnavailable(t *testing.T) {
	provider, _ := createTestProvider(t)

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestProvider_VerifyAccessToken(t *testing.T) {
	provider, fi := createTestProvider(t)
	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss":   fi.srv.URL,
			"sub":   "user-42",
			"aud":   testResource,
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
			"email": "driver@example.org",
			"roles": []string{"DRIVER"},
		}
	}

	t.Run("valid token", func(t *testing.T) {
		id, err := provider.VerifyAccessToken(context.Background(), fi.sign(t, base()))
		require.NoError(t, err)
		assert.Equal(t, "user-42", id.Subject)
		assert.Equal(t, "driver@example.org", id.Email)
		assert.Equal(t, []string{"DRIVER"}, id.ClaimRoles)
		assert.WithinDuration(t, now.Add(time.Hour), id.ExpiresAt, time.Second)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := base()
		c["aud"] = "https://other.api"
		_, err := provider.VerifyAccessToken(context.Background(), fi.sign(t, c))
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		c := base()
		c["exp"] = now.Add(-time.Minute).Unix()
		_, err := provider.VerifyAccessToken(context.Background(), fi.sign(t, c))
		require.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := base()
		delete(c, "sub")
		_, err := provider.VerifyAccessToken(context.Background(), fi.sign(t, c))
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := provider.VerifyAccessToken(context.Background(), "not-a-jwt")
		require.Error(t, err)
	})
}

func TestProvider_VerifyAccessToken_NoResource(t *testing.T) {
	fi := newFakeIssuer(t, "")
	cfg := fi.providerConfig()
	cfg.Resource = ""
	provider, err := NewProvider(cfg)
	require.NoError(t, err)

	_, err = provider.VerifyAccessToken(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API resource configured")
}

func TestProvider_EndSessionURL(t *testing.T) {
	provider, _ := createTestProvider(t)

	u, err := url.Parse(provider.EndSessionURL("http://localhost:8080/"))
	require.NoError(t, err)
	assert.Equal(t, "tenant.logto.test", u.Host)
	assert.Equal(t, "test-client", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8080/", u.Query().Get("post_logout_redirect_uri"))

	fi := newFakeIssuer(t, "")
	noLogout, err := NewProvider(fi.providerConfig())
	require.NoError(t, err)
	assert.Empty(t, noLogout.EndSessionURL("http://localhost:8080/"))
}

func TestGenerateRandomString(t *testing.T) {
	for _, n := range []int{1, 16, 31, 32, 64} {
		s, err := generateRandomString(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
	}

	a, _ := generateRandomString(32)
	b, _ := generateRandomString(32)
	assert.NotEqual(t, a, b)
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.ErrorContains(t, err, "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.ErrorContains(t, err, "nil token")
}

func Test_mapClaims_NameFallback(t *testing.T) {
	f := mapClaims(logtoClaims{Sub: "s", Username: "jdoe", Roles: []string{"ADMIN"}})
	assert.Equal(t, "s", f.subject)
	assert.Equal(t, "jdoe", f.name)
	assert.Equal(t, []string{"ADMIN"}, f.roles)
}

func Test_fillFromUserInfoClaims(t *testing.T) {
	ui := logtoClaims{Sub: "sub-abc", Email: "mail@example.com", Name: "Pat", Roles: []string{"MEMBER"}}

	var f idFields
	fillFromUserInfoClaims(&f, ui)
	assert.Equal(t, idFields{subject: "sub-abc", email: "mail@example.com", name: "Pat", roles: []string{"MEMBER"}}, f)

	keep := idFields{subject: "keep", email: "keep@example.com", name: "Keep", roles: []string{"x"}}
	fillFromUserInfoClaims(&keep, ui)
	assert.Equal(t, idFields{subject: "keep", email: "keep@example.com", name: "Keep", roles: []string{"x"}}, keep)
}
