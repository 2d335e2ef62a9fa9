package httpx

import (
	"context"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// resolutionErrKey carries why a request that presented credentials has no session.
type resolutionErrKey struct{}

// SetSessionInContext returns a child context that carries the resolved session.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session resolved for this request, if any.
func GetSessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	if !ok || s.SubjectID == "" {
		return domainauth.Session{}, false
	}
	return s, true
}

func setResolutionError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, resolutionErrKey{}, err)
}

// GetResolutionError returns the error from session resolution, or nil when the
// request carried no credentials or resolved successfully.
func GetResolutionError(ctx context.Context) error {
	err, _ := ctx.Value(resolutionErrKey{}).(error)
	return err
}
