package httpx

import (
	"log/slog"
	"net/http"

	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/ports"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	// Auth is optional; without it the /auth routes are not registered.
	Auth     AuthServiceInterface
	Sessions SessionResolver
	Backends BackendFactory
	// Roles receives member role changes made through the API so the next
	// request sees them. Optional.
	Roles ports.RoleWriter

	CookieDomain  string
	PostLogoutURL string
	// CSRFDisabled turns off double-submit checks (tests and trusted internal callers only).
	CSRFDisabled bool

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NewRouter builds the gateway's handler: session resolution wraps every
// route, and API mutations are CSRF-protected for cookie callers.
func NewRouter(services RouterServices) http.Handler {
	if services.Backends == nil {
		panic("RouterServices requires a BackendFactory")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	csrf := func(h http.Handler) http.Handler { return h }
	if !services.CSRFDisabled {
		csrf = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})
	}

	deps := EndpointDeps{Backends: services.Backends, Logger: logger, Metrics: services.Metrics}
	for _, rt := range apiRoutes(roleSync{roles: services.Roles}) {
		mux.Handle(rt.Pattern, csrf(deps.Handler(rt.Endpoint)))
	}
	mux.Handle("GET /api/session", csrf(http.HandlerFunc(sessionHandler)))
	mux.Handle("GET /api/dashboard", csrf(RequireSession(&DashboardHandler{
		Backends: services.Backends,
		Logger:   logger,
		Metrics:  services.Metrics,
	})))

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:           services.Auth,
			CookieDomain:  services.CookieDomain,
			PostLogoutURL: services.PostLogoutURL,
			Logger:        logger,
		}, csrf)
	}

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	return ResolveSession(SessionMiddlewareOptions{
		Resolver: services.Sessions,
		Logger:   logger,
	})(jsonMux(mux))
}

// jsonMux serves mux, replacing the mux's own plain-text replies for
// unmatched paths and methods with the JSON error body.
func jsonMux(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &headerRecorder{header: http.Header{}, status: http.StatusOK}
		mux.ServeHTTP(rec, r)
		if allow := rec.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		switch rec.status {
		case http.StatusMethodNotAllowed:
			WriteError(w, rec.status, "method not allowed")
		case http.StatusNotFound:
			WriteError(w, rec.status, "not found")
		default:
			WriteError(w, rec.status, "")
		}
	})
}

// headerRecorder captures the status and headers of a mux fallback reply and
// drops its body.
type headerRecorder struct {
	header http.Header
	status int
}

func (h *headerRecorder) Header() http.Header { return h.header }

func (h *headerRecorder) WriteHeader(code int) { h.status = code }

func (h *headerRecorder) Write(b []byte) (int, error) { return len(b), nil }

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, csrf func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.Handle("POST /auth/logout", csrf(http.HandlerFunc(h.Logout)))
	mux.HandleFunc("GET /auth/status", h.Status)
}
