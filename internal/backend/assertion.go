package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
)

// minSigningKeyBytes is the shortest HMAC key accepted for HS256.
const minSigningKeyBytes = 32

// AssertionClaims is the identity the gateway vouches for on each backend call.
type AssertionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer mints short-lived HS256 identity assertions shared with the backend.
type Signer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewSigner validates the key and returns a Signer.
func NewSigner(key []byte, issuer, audience string, ttl time.Duration) (*Signer, error) {
	if len(key) < minSigningKeyBytes {
		return nil, fmt.Errorf("signing key must be at least %d bytes", minSigningKeyBytes)
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Signer{key: append([]byte(nil), key...), issuer: issuer, audience: audience, ttl: ttl, now: time.Now}, nil
}

// Sign returns a compact JWS asserting the session's subject and role.
func (s *Signer) Sign(sess domainauth.Session) (string, error) {
	now := s.now()
	claims := AssertionClaims{
		Role:  sess.Role.String(),
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   sess.SubjectID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign identity assertion: %w", err)
	}
	return token, nil
}
