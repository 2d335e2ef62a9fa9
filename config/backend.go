package config

import (
	"strings"
	"time"
)

// BackendConfig configures the dispatch backend API client.
type BackendConfig struct {
	// BaseURL is the absolute URL all operation paths are resolved against.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:4000/api/"`

	// Issuer and Audience are stamped into every identity assertion.
	Issuer   string `env:"ISSUER"   envDefault:"dispatch-web"`
	Audience string `env:"AUDIENCE" envDefault:"dispatch-api"`

	// SigningKey is the shared HMAC secret for identity assertions (min 32 bytes).
	SigningKey string `env:"SIGNING_KEY"`

	AssertionTTL time.Duration `env:"ASSERTION_TTL" envDefault:"2m"`
	Timeout      time.Duration `env:"TIMEOUT"       envDefault:"10s"`
}

// Sanitize trims values and clamps durations to usable ranges.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimSpace(b.BaseURL)
	b.Issuer = strings.TrimSpace(b.Issuer)
	b.Audience = strings.TrimSpace(b.Audience)

	if b.AssertionTTL <= 0 {
		b.AssertionTTL = 2 * time.Minute
	}
	// Assertions are minted per request; anything longer than an hour is a misconfiguration.
	b.AssertionTTL = min(b.AssertionTTL, time.Hour)

	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}
