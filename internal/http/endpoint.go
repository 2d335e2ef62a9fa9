package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/saferide/dispatch-web/internal/backend"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/observability/metrics"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
	"github.com/saferide/dispatch-web/internal/ports"
)

// Policy decides what an endpoint returns when its backend call fails.
type Policy int

const (
	// ReadDegrade serves the endpoint's fallback value with 200.
	ReadDegrade Policy = iota + 1
	// WritePropagate returns 500 {"error": <backend message>}.
	WritePropagate
)

func (p Policy) String() string {
	switch p {
	case ReadDegrade:
		return "read-degrade"
	case WritePropagate:
		return "write-propagate"
	default:
		return "unknown"
	}
}

// BackendFactory builds a backend client bound to one session.
type BackendFactory interface {
	ForSession(ctx context.Context, sess domainauth.Session) (ports.Backend, error)
}

// Endpoint declares one JSON route: who may call it, what it calls and how a
// failed call is reported.
type Endpoint struct {
	Name       string
	Capability domainauth.Capability
	Policy     Policy
	// Fallback is served by ReadDegrade endpoints when the call fails.
	Fallback func() any
	// Call performs the backend operation. A nil result with no error means 204.
	Call func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error)
	// SuccessStatus defaults to 200.
	SuccessStatus int
}

// EndpointDeps groups what every Endpoint handler needs.
type EndpointDeps struct {
	Backends BackendFactory
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// Handler returns the http.Handler enforcing ep's session, capability and failure policy.
func (d EndpointDeps) Handler(ep Endpoint) http.Handler {
	if d.Backends == nil {
		panic("EndpointDeps requires a BackendFactory")
	}
	if ep.Call == nil {
		panic("endpoint " + ep.Name + " has no Call")
	}
	if ep.Policy == ReadDegrade && ep.Fallback == nil {
		panic("read endpoint " + ep.Name + " has no Fallback")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("endpoint", ep.Name, "policy", ep.Policy.String())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, ok := GetSessionFromContext(ctx)
		if !ok {
			metrics.EmitAccessDenied(d.Metrics, ep.Name, "unauthenticated")
			WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !sess.Can(ep.Capability) {
			metrics.EmitAccessDenied(d.Metrics, ep.Name, "forbidden")
			logger.InfoContext(ctx, "access denied",
				"subject", sess.SubjectID, "role", sess.Role.String(), "capability", string(ep.Capability))
			WriteError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		client, err := d.Backends.ForSession(ctx, sess)
		if err != nil {
			logger.ErrorContext(ctx, "backend client unavailable", "subject", sess.SubjectID, "error", err)
			writeAppError(w, err)
			return
		}

		out, err := ep.Call(w, r, client)
		if err != nil {
			d.fail(w, r, ep, failure{err: err, logger: logger, subject: sess.SubjectID})
			return
		}
		switch {
		case out == nil:
			w.WriteHeader(http.StatusNoContent)
		case ep.SuccessStatus != 0:
			WriteJSON(w, ep.SuccessStatus, out)
		default:
			WriteJSON(w, http.StatusOK, out)
		}
	})
}

type failure struct {
	err     error
	logger  *slog.Logger
	subject string
}

// fail applies ep's policy to a failed call. Validation errors are the
// caller's fault under either policy.
func (d EndpointDeps) fail(w http.ResponseWriter, r *http.Request, ep Endpoint, f failure) {
	ctx := r.Context()
	if apperrors.IsValidation(f.err) {
		WriteError(w, http.StatusBadRequest, apperrors.PublicMessage(f.err))
		return
	}

	attrs := []any{"subject", f.subject, "error", f.err}
	if be, ok := backend.AsError(f.err); ok {
		attrs = append(attrs, "backend_op", be.Op, "backend_status", be.Status)
	}

	switch ep.Policy {
	case ReadDegrade:
		f.logger.WarnContext(ctx, "read degraded to fallback", attrs...)
		metrics.EmitDegradedRead(d.Metrics, ep.Name, f.err)
		WriteJSON(w, http.StatusOK, ep.Fallback())
	default:
		f.logger.ErrorContext(ctx, "write failed", attrs...)
		metrics.EmitWriteFailure(d.Metrics, ep.Name, f.err)
		WriteError(w, http.StatusInternalServerError, apperrors.PublicMessage(f.err))
	}
}
