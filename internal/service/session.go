package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/observability/metrics"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/ports"
)

// Credentials are the request inputs the resolver may use. The HTTP layer
// extracts them explicitly; the resolver never reads ambient request state.
type Credentials struct {
	// SessionID is the opaque login record ID from the session cookie.
	SessionID string
	// BearerToken is a provider-issued access token from the Authorization header.
	BearerToken string
}

// Mode names the credential the resolver will use.
func (c Credentials) Mode() string {
	switch {
	case c.BearerToken != "":
		return "bearer"
	case c.SessionID != "":
		return "cookie"
	default:
		return "none"
	}
}

// ResolverStores groups the ports consulted during resolution.
// Tokens may be nil, in which case bearer credentials are rejected.
type ResolverStores struct {
	Logins ports.LoginStore
	Tokens ports.TokenVerifier
	Roles  ports.RoleStore
}

// ResolverConfig carries optional ambient dependencies.
type ResolverConfig struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

// SessionResolverOptions groups dependencies for SessionResolver.
type SessionResolverOptions struct {
	Stores ResolverStores
	Config ResolverConfig
}

// SessionResolver turns request credentials into a Session whose role comes
// from the role store. Provider claim roles never grant anything.
type SessionResolver struct {
	stores  ResolverStores
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(opts SessionResolverOptions) *SessionResolver {
	if opts.Stores.Logins == nil {
		panic("SessionResolver requires a LoginStore")
	}
	if opts.Stores.Roles == nil {
		panic("SessionResolver requires a RoleStore")
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}
	return &SessionResolver{
		stores:  opts.Stores,
		logger:  logger.With("component", "session_resolver"),
		metrics: opts.Config.Metrics,
		now:     now,
	}
}

type subjectInfo struct {
	subject    string
	email      string
	name       string
	loginID    string
	claimRoles []string
}

// Resolve returns the Session for creds. Failures are AppErrors with code
// unauthenticated (no, unknown or expired credentials), role_unresolved (the
// subject has no usable role) or internal (a store could not be reached).
// A bearer token takes precedence over a session cookie.
func (r *SessionResolver) Resolve(ctx context.Context, creds Credentials) (domainauth.Session, error) {
	sess, err := r.resolve(ctx, creds)
	metrics.EmitSessionResolution(r.metrics, creds.Mode(), err)
	return sess, err
}

func (r *SessionResolver) resolve(ctx context.Context, creds Credentials) (domainauth.Session, error) {
	var (
		info subjectInfo
		err  error
	)
	switch creds.Mode() {
	case "bearer":
		info, err = r.fromBearer(ctx, creds.BearerToken)
	case "cookie":
		info, err = r.fromLogin(ctx, creds.SessionID)
	default:
		return domainauth.Session{}, apperrors.Unauthenticated("no credentials presented")
	}
	if err != nil {
		return domainauth.Session{}, err
	}

	role, err := r.stores.Roles.RoleFor(ctx, info.subject)
	if err != nil {
		r.logger.WarnContext(ctx, "role unresolved", "subject", info.subject, "error", err)
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeRoleUnresolved, "no role is assigned to this account")
	}

	if len(info.claimRoles) > 0 && !slices.Contains(info.claimRoles, role.String()) {
		r.logger.DebugContext(ctx, "provider claims diverge from role store",
			"subject", info.subject, "store_role", role, "claim_roles", info.claimRoles)
	}

	return domainauth.Session{
		SubjectID: info.subject,
		Role:      role,
		IssuedAt:  r.now(),
		Email:     info.email,
		Name:      info.name,
		LoginID:   info.loginID,
	}, nil
}

func (r *SessionResolver) fromLogin(ctx context.Context, id string) (subjectInfo, error) {
	login, err := r.stores.Logins.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return subjectInfo{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "session not found or expired")
		}
		return subjectInfo{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "session lookup failed")
	}
	if login.Expired(r.now()) || login.Subject == "" {
		return subjectInfo{}, apperrors.Unauthenticated("session not found or expired")
	}
	return subjectInfo{
		subject: login.Subject,
		email:   login.Email,
		name:    login.Name,
		loginID: login.ID,
	}, nil
}

func (r *SessionResolver) fromBearer(ctx context.Context, token string) (subjectInfo, error) {
	if r.stores.Tokens == nil {
		return subjectInfo{}, apperrors.Unauthenticated("bearer tokens are not accepted")
	}
	id, err := r.stores.Tokens.VerifyAccessToken(ctx, token)
	if err != nil {
		return subjectInfo{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthenticated, "invalid bearer token")
	}
	if id.Subject == "" {
		return subjectInfo{}, apperrors.Unauthenticated("invalid bearer token")
	}
	return subjectInfo{
		subject:    id.Subject,
		email:      id.Email,
		name:       id.Name,
		claimRoles: id.ClaimRoles,
	}, nil
}
