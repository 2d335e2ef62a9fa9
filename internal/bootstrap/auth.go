package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/saferide/dispatch-web/config"
	"github.com/saferide/dispatch-web/internal/adapters/devauth"
	"github.com/saferide/dispatch-web/internal/adapters/oidc"
	redisadapter "github.com/saferide/dispatch-web/internal/adapters/redis"
	"github.com/saferide/dispatch-web/internal/ports"
	"github.com/saferide/dispatch-web/internal/service"
)

// AuthConfig contains configuration for the auth components.
type AuthConfig struct {
	Auth        config.AuthConfig
	KeyPrefix   string
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents are the sign-in pieces shared by the router and the session resolver.
type AuthComponents struct {
	// Service is nil when sign-in is disabled; the /auth routes are then not mounted.
	Service *service.AuthService
	Logins  ports.LoginStore
	// Tokens is nil when bearer access tokens are not accepted.
	Tokens ports.TokenVerifier
}

// authProvider is implemented by both the OIDC and the dev providers.
type authProvider interface {
	ports.AuthProvider
	ports.TokenVerifier
}

// BuildAuth wires the login store and the configured identity provider.
// A provider that cannot be built disables sign-in but keeps the login store,
// so existing sessions still resolve.
func BuildAuth(cfg AuthConfig) (AuthComponents, error) {
	if cfg.RedisClient == nil {
		return AuthComponents{}, errors.New("auth requires a redis client for the login store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = redisadapter.DefaultLoginPrefix
	}
	logins := redisadapter.NewLoginStoreWithPrefix(cfg.RedisClient, prefix)
	out := AuthComponents{Logins: logins}

	prov, err := buildProvider(cfg.Auth)
	if err != nil {
		logger.Warn("identity provider unavailable, sign-in disabled", "mode", cfg.Auth.Mode, "error", err)
		return out, nil
	}

	out.Service = service.NewAuthService(service.AuthServiceOptions{
		Provider:    prov,
		Logins:      logins,
		MaxLoginAge: cfg.Auth.LoginTTL,
	})
	out.Tokens = prov
	logger.Info("sign-in enabled", "mode", cfg.Auth.Mode)
	return out, nil
}

//nolint:ireturn // both providers satisfy the same pair of ports.
func buildProvider(cfg config.AuthConfig) (authProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		return devauth.NewProvider(devauth.Config{
			Subject:         cfg.DevAuth.Subject,
			Email:           cfg.DevAuth.Email,
			Name:            cfg.DevAuth.Name,
			BearerToken:     cfg.DevAuth.BearerToken,
			SessionDuration: cfg.LoginTTL,
		})
	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		if !oauth.Configured() {
			return nil, fmt.Errorf("oauth config incomplete (client_id set=%t, client_secret set=%t, discovery_url set=%t)",
				oauth.ClientID != "", oauth.ClientSecret != "", oauth.DiscoveryURL != "")
		}
		return oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			Resource:     oauth.Resource,
			LogoutURL:    oauth.LogoutURL,
		})
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}
