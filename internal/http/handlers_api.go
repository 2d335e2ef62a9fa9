package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/ports"
)

// route pairs a mux pattern with its endpoint declaration.
type route struct {
	Pattern  string
	Endpoint Endpoint
}

func emptyList[T any]() func() any {
	return func() any { return []T{} }
}

// roleSync mirrors member role changes accepted by the backend into the role
// store the session resolver reads. A nil writer disables mirroring.
type roleSync struct {
	roles ports.RoleWriter
}

func (s roleSync) changedBy(r *http.Request) string {
	if sess, ok := GetSessionFromContext(r.Context()); ok {
		return sess.SubjectID
	}
	return "dispatch-web"
}

func (s roleSync) set(r *http.Request, subject, role string) error {
	if s.roles == nil {
		return nil
	}
	_, err := s.roles.Set(r.Context(), model.SetRoleRequest{Subject: subject, Role: role, ChangedBy: s.changedBy(r)})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "member role changed but the role store was not updated")
	}
	return nil
}

func (s roleSync) remove(r *http.Request, subject string) error {
	if s.roles == nil {
		return nil
	}
	if _, err := s.roles.Delete(r.Context(), subject, s.changedBy(r)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "member removed but the role store was not updated")
	}
	return nil
}

// apiRoutes is the dispatch API surface. Reads degrade to their fallback when
// the backend fails; writes report the backend's message.
func apiRoutes(rs roleSync) []route {
	return []route{
		{"GET /api/shifts", Endpoint{
			Name: "shifts.list", Capability: domainauth.CapViewShifts, Policy: ReadDegrade,
			Fallback: emptyList[model.Shift](),
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GetShifts(r.Context())
			},
		}},
		{"POST /api/shifts", Endpoint{
			Name: "shifts.create", Capability: domainauth.CapManageOperations, Policy: WritePropagate,
			SuccessStatus: http.StatusCreated,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.CreateShiftRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				return b.CreateShift(r.Context(), req)
			},
		}},
		{"GET /api/status", Endpoint{
			Name: "status.get", Capability: domainauth.CapDrive, Policy: ReadDegrade,
			Fallback: func() any { return model.DriverStatus{} },
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GetMyStatus(r.Context())
			},
		}},
		{"POST /api/status/online", Endpoint{
			Name: "status.online", Capability: domainauth.CapDrive, Policy: WritePropagate,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.GoOnlineRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				return b.GoOnline(r.Context(), req)
			},
		}},
		{"POST /api/status/offline", Endpoint{
			Name: "status.offline", Capability: domainauth.CapDrive, Policy: WritePropagate,
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GoOffline(r.Context())
			},
		}},
		{"GET /api/tasks", Endpoint{
			Name: "tasks.list", Capability: domainauth.CapDrive, Policy: ReadDegrade,
			Fallback: emptyList[model.Task](),
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GetMyTasks(r.Context())
			},
		}},
		{"POST /api/tasks/{id}/complete", Endpoint{
			Name: "tasks.complete", Capability: domainauth.CapDrive, Policy: WritePropagate,
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.CompleteTask(r.Context(), r.PathValue("id"))
			},
		}},
		{"POST /api/transfers/{id}/accept", Endpoint{
			Name: "transfers.accept", Capability: domainauth.CapDrive, Policy: WritePropagate,
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.AcceptTransfer(r.Context(), r.PathValue("id"))
			},
		}},
		{"GET /api/vans", Endpoint{
			Name: "vans.list", Capability: domainauth.CapDrive, Policy: ReadDegrade,
			Fallback: emptyList[model.Van](),
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GetVans(r.Context())
			},
		}},
		{"POST /api/walk-ons", Endpoint{
			Name: "walkons.create", Capability: domainauth.CapDrive, Policy: WritePropagate,
			SuccessStatus: http.StatusCreated,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.WalkOnRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				return b.CreateWalkOn(r.Context(), req)
			},
		}},
		{"GET /api/members", Endpoint{
			Name: "members.list", Capability: domainauth.CapManageOperations, Policy: ReadDegrade,
			Fallback: emptyList[model.Member](),
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				q := r.URL.Query()
				return b.GetMembers(r.Context(), model.MemberFilter{
					Search: strings.TrimSpace(q.Get("search")),
					Role:   strings.ToUpper(strings.TrimSpace(q.Get("role"))),
				})
			},
		}},
		{"PATCH /api/members/{id}", Endpoint{
			Name: "members.update_role", Capability: domainauth.CapManageMembers, Policy: WritePropagate,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.UpdateMemberRoleRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
				id := r.PathValue("id")
				member, err := b.UpdateMemberRole(r.Context(), id, req)
				if err != nil {
					return nil, err
				}
				subject := member.SubjectID()
				if subject == "" {
					subject = id
				}
				if err = rs.set(r, subject, req.Role); err != nil {
					return nil, err
				}
				return member, nil
			},
		}},
		{"DELETE /api/members/{id}", Endpoint{
			Name: "members.remove", Capability: domainauth.CapManageMembers, Policy: WritePropagate,
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				id := r.PathValue("id")
				if err := b.RemoveMember(r.Context(), id); err != nil {
					return nil, err
				}
				return nil, rs.remove(r, id)
			},
		}},
		{"POST /api/rides", Endpoint{
			Name: "rides.create", Capability: domainauth.CapManageOperations, Policy: WritePropagate,
			SuccessStatus: http.StatusCreated,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.CreateRideRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				return b.CreateRide(r.Context(), req)
			},
		}},
		{"POST /api/rides/{id}/cancel", Endpoint{
			Name: "rides.cancel", Capability: domainauth.CapManageOperations, Policy: WritePropagate,
			Call: func(w http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				var req model.CancelRideRequest
				if err := decodeBody(w, r, &req); err != nil {
					return nil, err
				}
				return b.CancelRide(r.Context(), r.PathValue("id"), req)
			},
		}},
		{"GET /api/domains", Endpoint{
			Name: "domains.list", Capability: domainauth.CapViewDomains, Policy: ReadDegrade,
			Fallback: emptyList[model.Domain](),
			Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
				return b.GetDomains(r.Context())
			},
		}},
	}
}
