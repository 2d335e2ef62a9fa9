package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/service"
)

// SessionCookieName is the cookie holding the opaque login record ID.
const SessionCookieName = "session_id"

// SessionResolver turns request credentials into a Session.
type SessionResolver interface {
	Resolve(ctx context.Context, creds service.Credentials) (domainauth.Session, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			info := &requestInfo{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			}
			if info.subject != "" {
				attrs = append(attrs, slog.String("subject", info.subject), slog.String("role", info.role))
			}
			logger.InfoContext(r.Context(), "http", attrs...)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

// requestInfo lets inner middleware report the resolved caller to Logging.
type requestInfo struct {
	subject string
	role    string
}

type requestInfoKey struct{}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CredentialsFromRequest extracts the session cookie and bearer token.
func CredentialsFromRequest(r *http.Request) service.Credentials {
	var creds service.Credentials
	if c, err := r.Cookie(SessionCookieName); err == nil {
		creds.SessionID = strings.TrimSpace(c.Value)
	}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		creds.BearerToken = strings.TrimSpace(token)
	}
	return creds
}

// SessionMiddlewareOptions groups dependencies for ResolveSession.
type SessionMiddlewareOptions struct {
	Resolver SessionResolver
	Logger   *slog.Logger
}

// ResolveSession resolves the caller's session once per request and stores it
// (or the reason it could not be resolved) in the request context. It never
// rejects a request; endpoints decide whether a session is required.
func ResolveSession(opts SessionMiddlewareOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := CredentialsFromRequest(r)
			if opts.Resolver == nil || creds.Mode() == "none" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess, err := opts.Resolver.Resolve(ctx, creds)
			if err != nil {
				level := slog.LevelDebug
				if !apperrors.IsUnauthenticated(err) {
					level = slog.LevelWarn
				}
				logger.Log(ctx, level, "session not resolved",
					"mode", creds.Mode(), "code", apperrors.GetCode(err), "error", err)
				ctx = setResolutionError(ctx, err)
			} else {
				ctx = SetSessionInContext(ctx, sess)
			}
			if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok && err == nil {
				info.subject, info.role = sess.SubjectID, sess.Role.String()
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a resolved session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
