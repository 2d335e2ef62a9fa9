package httpx

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	"github.com/saferide/dispatch-web/internal/observability/metrics"
	"github.com/saferide/dispatch-web/internal/observability/statsd"
)

// SessionView is the dashboard's view of the caller.
type SessionView struct {
	Authenticated       bool   `json:"authenticated"`
	SubjectID           string `json:"subjectId,omitempty"`
	Email               string `json:"email,omitempty"`
	Name                string `json:"name,omitempty"`
	Role                string `json:"role,omitempty"`
	CanManageOperations bool   `json:"canManageOperations"`
}

// sessionHandler reports the resolved session. Any resolution failure reads
// as signed out with no operational authority.
func sessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, SessionView{})
		return
	}
	WriteJSON(w, http.StatusOK, viewOf(sess))
}

func viewOf(sess domainauth.Session) SessionView {
	return SessionView{
		Authenticated:       true,
		SubjectID:           sess.SubjectID,
		Email:               sess.Email,
		Name:                sess.Name,
		Role:                sess.Role.String(),
		CanManageOperations: domainauth.CanManageOperations(sess.Role),
	}
}

// Dashboard is the aggregate first-paint payload. Sections the caller's role
// cannot read are null.
type Dashboard struct {
	Session  SessionView         `json:"session"`
	Status   *model.DriverStatus `json:"status"`
	Tasks    []model.Task        `json:"tasks"`
	Shifts   []model.Shift       `json:"shifts"`
	Degraded []string            `json:"degraded"`
}

// DashboardHandler fans out the dashboard reads concurrently. Each read
// degrades on its own; the response is always 200 for a signed-in caller.
type DashboardHandler struct {
	Backends BackendFactory
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

func (h *DashboardHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Mounted behind RequireSession.
	sess, _ := GetSessionFromContext(ctx)
	client, err := h.Backends.ForSession(ctx, sess)
	if err != nil {
		h.logger().ErrorContext(ctx, "backend client unavailable", "subject", sess.SubjectID, "error", err)
		writeAppError(w, err)
		return
	}

	var (
		status model.DriverStatus
		tasks  []model.Task
		shifts []model.Shift
		errs   [3]error
	)
	canDrive := sess.Can(domainauth.CapDrive)
	var g errgroup.Group
	if canDrive {
		g.Go(func() error {
			status, errs[0] = client.GetMyStatus(ctx)
			return nil
		})
		g.Go(func() error {
			tasks, errs[1] = client.GetMyTasks(ctx)
			return nil
		})
	}
	if sess.Can(domainauth.CapViewShifts) {
		g.Go(func() error {
			shifts, errs[2] = client.GetShifts(ctx)
			return nil
		})
	}
	_ = g.Wait()

	out := Dashboard{
		Session:  viewOf(sess),
		Degraded: []string{},
	}
	names := [3]string{"dashboard.status", "dashboard.tasks", "dashboard.shifts"}
	for i, err := range errs {
		if err == nil {
			continue
		}
		h.logger().WarnContext(ctx, "read degraded to fallback", "endpoint", names[i], "subject", sess.SubjectID, "error", err)
		metrics.EmitDegradedRead(h.Metrics, names[i], err)
		out.Degraded = append(out.Degraded, names[i])
	}

	if canDrive {
		if errs[0] != nil {
			status = model.DriverStatus{}
		}
		out.Status = &status
		out.Tasks = nonNil(tasks, errs[1])
	}
	if sess.Can(domainauth.CapViewShifts) {
		out.Shifts = nonNil(shifts, errs[2])
	}
	WriteJSON(w, http.StatusOK, out)
}

func nonNil[T any](items []T, err error) []T {
	if err != nil || items == nil {
		return []T{}
	}
	return items
}
