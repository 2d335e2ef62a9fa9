package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/service"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginCookie     = "post_login_redirect"
	oauthCookieLifetime = 10 * time.Minute
)

// AuthServiceInterface defines the sign-in and sign-out operations the handlers need.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Login, error)
	Logout(ctx context.Context, loginID string) error
	EndSessionURL(postLogoutRedirect string) string
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	// PostLogoutURL is the absolute URL the identity provider returns to after sign-out.
	PostLogoutURL string
	Logger        *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login starts the provider sign-in flow.
// GET /auth/login?redirect_uri=<optional relative path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.setCookie(w, r, cookieSpec{Name: oauthStateCookie, Value: result.State, MaxAge: oauthCookieLifetime})
	h.setCookie(w, r, cookieSpec{Name: oauthNonceCookie, Value: result.Nonce, MaxAge: oauthCookieLifetime})
	h.setCookie(w, r, cookieSpec{Name: postLoginCookie, Value: redirectURI, MaxAge: oauthCookieLifetime})

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the provider sign-in flow and sets the session cookie.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger().WarnContext(r.Context(), "identity provider returned an error",
			"error", e, "description", q.Get("error_description"))
		WriteError(w, http.StatusUnauthorized, "sign-in was not completed")
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "authorization code is required")
		return
	}
	if state == "" {
		WriteError(w, http.StatusBadRequest, "state parameter is required")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, http.StatusBadRequest, "invalid or missing state parameter")
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil || nonceCookie.Value == "" {
		WriteError(w, http.StatusBadRequest, "missing nonce")
		return
	}

	login, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "complete login failed", "error", err)
		WriteError(w, http.StatusUnauthorized, "sign-in failed")
		return
	}

	h.setCookie(w, r, cookieSpec{Name: SessionCookieName, Value: login.ID, MaxAge: time.Until(login.ExpiresAt)})
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	redirectURI := "/"
	if c, err := r.Cookie(postLoginCookie); err == nil {
		redirectURI = safeRedirectPath(c.Value)
		h.clearCookie(w, r, postLoginCookie)
	}
	h.logger().InfoContext(r.Context(), "signed in", "subject", login.Subject)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout deletes the login record, clears the cookie and hands the browser to
// the provider's end-session endpoint when one is known.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), c.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, SessionCookieName)

	target := h.Svc.EndSessionURL(h.PostLogoutURL)
	if target == "" {
		target = "/"
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"redirectTo": target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Status reports whether the caller is signed in. An unusable session cookie is cleared.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		if err := GetResolutionError(r.Context()); err != nil && apperrors.IsUnauthenticated(err) {
			h.clearCookie(w, r, SessionCookieName)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    sess.SubjectID,
			"email": sess.Email,
			"name":  sess.Name,
			"role":  sess.Role,
		},
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

type cookieSpec struct {
	Name   string
	Value  string
	MaxAge time.Duration
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, c cookieSpec) {
	maxAge := int(c.MaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clearCookie expires a cookie, mirroring the attributes it was set with.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirectPath keeps redirects same-origin: a relative path starting with
// a single "/", or "/" when the candidate is anything else.
func safeRedirectPath(candidate string) string {
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
