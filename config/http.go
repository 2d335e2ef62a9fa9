package config

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public URL of the dashboard; sign-out returns here.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080/"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CSRFDisabled turns off double-submit CSRF checks. Only for local tooling.
	CSRFDisabled bool `env:"HTTP_CSRF_DISABLED" envDefault:"false"`

	// CompressionEnabled enables gzip compression for JSON responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// CompressionMinSize is the smallest body, in bytes, worth compressing.
	CompressionMinSize int `env:"HTTP_COMPRESSION_MIN_SIZE" envDefault:"1024"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	h.CompressionLevel = max(1, min(h.CompressionLevel, 9))
	h.CompressionMinSize = max(0, h.CompressionMinSize)
	h.CookieDomain = cookieDomain(h.CookieDomain)
}

// cookieDomain normalises APP_COOKIE_DOMAIN. Browsers drop cookies scoped to a
// public suffix, so such a value falls back to host-only cookies.
func cookieDomain(raw string) string {
	d := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "."))
	if d == "" {
		return ""
	}
	if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
		return ""
	}
	return d
}
