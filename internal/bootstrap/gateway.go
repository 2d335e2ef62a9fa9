package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saferide/dispatch-web/config"
	"github.com/saferide/dispatch-web/internal/backend"
	"github.com/saferide/dispatch-web/internal/data"
	"github.com/saferide/dispatch-web/internal/devseed"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// Gateway holds the long-lived components behind the HTTP router.
type Gateway struct {
	Auth     AuthComponents
	Roles    *data.RoleRepo
	Sessions *service.SessionResolver
	Backends *backend.Factory
	Metrics  *statsd.Client
}

// GatewayDeps groups dependencies for BuildGateway.
type GatewayDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildGateway wires the role store, login store, identity provider,
// session resolver and backend client factory.
func BuildGateway(deps GatewayDeps) (*Gateway, error) {
	if deps.Config == nil {
		return nil, errors.New("gateway config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("gateway requires a database for the role store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := buildMetrics(logger, cfg.Observability)

	auth, err := BuildAuth(AuthConfig{
		Auth:        cfg.Auth,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	roles := data.NewRoleRepo(deps.DB)
	resolver := service.NewSessionResolver(service.SessionResolverOptions{
		Stores: service.ResolverStores{
			Logins: auth.Logins,
			Tokens: auth.Tokens,
			Roles:  roles,
		},
		Config: service.ResolverConfig{Logger: logger, Metrics: metrics},
	})

	factory, err := backend.NewFactory(backend.FactoryOptions{
		Config: backend.Config{
			BaseURL:      cfg.Backend.BaseURL,
			Issuer:       cfg.Backend.Issuer,
			Audience:     cfg.Backend.Audience,
			SigningKey:   []byte(cfg.Backend.SigningKey),
			AssertionTTL: cfg.Backend.AssertionTTL,
			Timeout:      cfg.Backend.Timeout,
		},
		Observability: backend.Observability{Logger: logger, Metrics: metrics},
	})
	if err != nil {
		return nil, fmt.Errorf("backend client factory: %w", err)
	}

	return &Gateway{
		Auth:     auth,
		Roles:    roles,
		Sessions: resolver,
		Backends: factory,
		Metrics:  metrics,
	}, nil
}

// buildMetrics returns a statsd client; a disabled or unreachable sink drops metrics.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	statsdCfg := statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	}
	client, err := statsd.NewClient(statsdCfg)
	if err != nil {
		logger.Error("failed to initialise statsd client, metrics disabled", "error", err)
		statsdCfg.Enabled = false
		client, _ = statsd.NewClient(statsdCfg)
	}
	return client
}

// SeedDevRole assigns the dev identity its configured role. It only runs in
// dev mode with mock auth.
func SeedDevRole(ctx context.Context, cfg *config.AppConfig, roles devseed.RoleWriter, logger *slog.Logger) error {
	if cfg == nil || !cfg.IsDev || cfg.Auth.Mode != config.AuthModeMock {
		return nil
	}
	_, err := devseed.Run(ctx, devseed.Options{
		Roles:      roles,
		DevSubject: cfg.Auth.DevAuth.Subject,
		DevEmail:   cfg.Auth.DevAuth.Email,
		DevRole:    cfg.Auth.DevAuth.Role,
		Logger:     logger,
	})
	return err
}

// RunConfig contains dependencies for RunWithShutdown.
type RunConfig struct {
	Config  *config.AppConfig
	Gateway *Gateway
	Logger  *slog.Logger
}

// RunWithShutdown starts the HTTP server and blocks until a shutdown signal
// is received or the server fails.
func RunWithShutdown(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil || cfg.Gateway == nil {
		return errors.New("run config requires Config and Gateway")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:  cfg.Config,
		Gateway: cfg.Gateway,
		Logger:  logger,
		ErrCh:   errCh,
	})

	return waitForShutdown(ctx, shutdownConfig{
		errCh:      errCh,
		httpServer: server,
		metrics:    cfg.Gateway.Metrics,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	errCh      <-chan error
	httpServer *http.Server
	metrics    *statsd.Client
	logger     *slog.Logger
}

// waitForShutdown waits for a shutdown signal, context cancellation or server error.
func waitForShutdown(ctx context.Context, cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		cfg.logger.Info("shutting down...")
	case <-ctx.Done():
		cfg.logger.Info("context canceled, shutting down")
	case runErr = <-cfg.errCh:
		cfg.logger.Error("http server error", "error", runErr)
	}

	stopErr := gracefulStop(cfg)
	if runErr != nil {
		return errors.Join(runErr, stopErr)
	}
	return stopErr
}

func gracefulStop(cfg shutdownConfig) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	err := ShutdownHTTPServer(ShutdownConfig{
		Context: shutdownCtx,
		Server:  cfg.httpServer,
		Logger:  cfg.logger,
	})
	if cfg.metrics != nil {
		if cerr := cfg.metrics.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close statsd client: %w", cerr))
		}
	}
	return err
}
