// Package backend is the identity-scoped client for the external dispatch API.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/ports"
)

// Config describes the backend endpoint and the assertion it expects.
type Config struct {
	BaseURL      string
	Issuer       string
	Audience     string
	SigningKey   []byte
	AssertionTTL time.Duration
	Timeout      time.Duration
}

// Observability carries optional logging and metrics sinks.
type Observability struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// FactoryOptions groups dependencies for Factory.
type FactoryOptions struct {
	Config        Config
	HTTPClient    *http.Client // Optional, defaults to a client with Config.Timeout
	Observability Observability
}

// Factory builds one Client per session. It holds only immutable configuration
// and the shared transport; no per-user state survives a call to ForSession.
type Factory struct {
	base    *url.URL
	signer  *Signer
	http    *http.Client
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewFactory validates configuration and returns a Factory.
func NewFactory(opts FactoryOptions) (*Factory, error) {
	cfg := opts.Config
	base, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base URL %q must be an absolute URL", cfg.BaseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	signer, err := NewSigner(cfg.SigningKey, cfg.Issuer, cfg.Audience, cfg.AssertionTTL)
	if err != nil {
		return nil, fmt.Errorf("backend assertion signer: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Observability.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Factory{
		base:    base,
		signer:  signer,
		http:    httpClient,
		logger:  logger.With("component", "backend"),
		metrics: opts.Observability.Metrics,
	}, nil
}

// ForSession returns a Client that acts as sess on every call.
func (f *Factory) ForSession(_ context.Context, sess domainauth.Session) (ports.Backend, error) {
	if sess.SubjectID == "" {
		return nil, apperrors.Unauthenticated("session has no subject")
	}
	if !sess.Role.Valid() {
		return nil, &apperrors.AppError{
			Code:    apperrors.ErrCodeRoleUnresolved,
			Message: fmt.Sprintf("session role %q is not valid", sess.Role),
		}
	}
	token, err := f.signer.Sign(sess)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:    f.base,
		http:    f.http,
		token:   token,
		subject: sess.SubjectID,
		logger:  f.logger,
		metrics: f.metrics,
	}, nil
}
