package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth signs members in through the Logto OIDC provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses a fixed dev identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains the Logto application settings.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email roles"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// Resource is the API resource indicator; bearer access tokens must carry it as audience.
	Resource  string `env:"RESOURCE"`
	LogoutURL string `env:"LOGOUT_URL"`
}

// Configured reports whether the settings required for discovery are present.
func (o OAuthConfig) Configured() bool {
	return o.ClientID != "" && o.ClientSecret != "" && o.DiscoveryURL != ""
}

// DevAuthConfig controls the mock/dev identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	Subject string `env:"SUBJECT" envDefault:"dev-user"`
	Email   string `env:"EMAIL"   envDefault:"dev@example.com"`
	Name    string `env:"NAME"    envDefault:"Dev Dispatcher"`
	// Role is seeded into the role store for Subject on startup in dev mode.
	Role        string `env:"ROLE"         envDefault:"ADMIN"`
	BearerToken string `env:"BEARER_TOKEN"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// LoginTTL caps how long a login record lives in Redis.
	LoginTTL time.Duration `env:"AUTH_LOGIN_TTL" envDefault:"12h"`
}

// Sanitize trims values and applies a floor to LoginTTL.
func (a *AuthConfig) Sanitize() {
	a.OAuth.ClientID = strings.TrimSpace(a.OAuth.ClientID)
	a.OAuth.DiscoveryURL = strings.TrimSpace(a.OAuth.DiscoveryURL)
	a.OAuth.Resource = strings.TrimSpace(a.OAuth.Resource)
	a.DevAuth.Subject = strings.TrimSpace(a.DevAuth.Subject)
	a.DevAuth.Role = strings.ToUpper(strings.TrimSpace(a.DevAuth.Role))
	if a.LoginTTL < time.Minute {
		a.LoginTTL = time.Minute
	}
}
