package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/saferide/dispatch-web/internal/backend"
	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/mocks"
	"github.com/saferide/dispatch-web/internal/ports"
)

// sampleBodies holds a well-formed request body for each mutating route.
//
//nolint:gochecknoglobals // test fixture
var sampleBodies = map[string]string{
	"POST /api/shifts":            `{"name":"Friday late","startsAt":"2025-03-07T21:00:00Z","endsAt":"2025-03-08T02:00:00Z"}`,
	"POST /api/status/online":     `{"vanId":"van-1"}`,
	"POST /api/walk-ons":          `{"passengerName":"Sam","dropoff":"12 Elm St","partySize":2,"vanId":"van-1"}`,
	"PATCH /api/members/{id}":     `{"role":"driver"}`,
	"POST /api/rides":             `{"passengerName":"Lee","pickup":"The Anchor","dropoff":"4 Oak Ave","partySize":1}`,
	"POST /api/rides/{id}/cancel": `{"reason":"passenger left"}`,
}

func requestFor(rt route, token string) apiRequest {
	method, pattern, _ := strings.Cut(rt.Pattern, " ")
	return apiRequest{
		Method: method,
		Path:   strings.ReplaceAll(pattern, "{id}", "item-1"),
		Body:   sampleBodies[rt.Pattern],
		Token:  token,
	}
}

func TestAPIRoutes_Declarations(t *testing.T) {
	seen := map[string]bool{}
	for _, rt := range apiRoutes(roleSync{}) {
		ep := rt.Endpoint
		assert.False(t, seen[rt.Pattern], "duplicate route %s", rt.Pattern)
		seen[rt.Pattern] = true
		assert.NotEmpty(t, ep.Name)
		assert.Contains(t, domainauth.Capabilities(), ep.Capability, rt.Pattern)

		method, _, _ := strings.Cut(rt.Pattern, " ")
		if method == http.MethodGet {
			assert.Equal(t, ReadDegrade, ep.Policy, "%s reads must degrade", rt.Pattern)
			require.NotNil(t, ep.Fallback, rt.Pattern)
		} else {
			assert.Equal(t, WritePropagate, ep.Policy, "%s writes must propagate", rt.Pattern)
		}
	}
	assert.Len(t, seen, 16)
}

func TestAPI_RequiresSession(t *testing.T) {
	for _, rt := range apiRoutes(roleSync{}) {
		t.Run(rt.Pattern, func(t *testing.T) {
			h := newAPIHarness(t)
			rec := h.do(t, requestFor(rt, ""))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
			assert.Zero(t, h.factory.calls())
		})
	}
}

func TestAPI_UnresolvedRoleIsUnauthenticated(t *testing.T) {
	for _, rt := range apiRoutes(roleSync{}) {
		t.Run(rt.Pattern, func(t *testing.T) {
			h := newAPIHarness(t)
			rec := h.do(t, requestFor(rt, orphanToken))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Zero(t, h.factory.calls())
		})
	}
}

func TestAPI_RoleStoreFailureGrantsNothing(t *testing.T) {
	h := newAPIHarness(t)
	h.roles.Err = errors.New("connection reset by peer")

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/shifts", Token: adminToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/session", Token: adminToken})
	assert.JSONEq(t, `{"authenticated":false,"canManageOperations":false}`, rec.Body.String())
	assert.Zero(t, h.factory.calls())
}

func TestAPI_ForbiddenWithoutCapability(t *testing.T) {
	for _, rt := range apiRoutes(roleSync{}) {
		for role, token := range tokenForRole {
			if domainauth.CanPerform(role, rt.Endpoint.Capability) {
				continue
			}
			t.Run(rt.Pattern+"/"+role.String(), func(t *testing.T) {
				h := newAPIHarness(t)
				rec := h.do(t, requestFor(rt, token))

				assert.Equal(t, http.StatusForbidden, rec.Code)
				assert.JSONEq(t, `{"error":"insufficient permissions"}`, rec.Body.String())
				assert.Zero(t, h.factory.calls(), "no backend client for a forbidden caller")
			})
		}
	}
}

func TestAPI_ReadsDegradeToFallback(t *testing.T) {
	tests := []struct {
		path   string
		expect func(m *mocks.MockBackend)
		want   string
	}{
		{"/api/shifts", func(m *mocks.MockBackend) {
			m.EXPECT().GetShifts(gomock.Any()).Return(nil, errBackendDown)
		}, `[]`},
		{"/api/status", func(m *mocks.MockBackend) {
			m.EXPECT().GetMyStatus(gomock.Any()).Return(model.DriverStatus{}, &backend.Error{Status: 502, Message: "Bad Gateway"})
		}, `{"online":false,"van":null}`},
		{"/api/tasks", func(m *mocks.MockBackend) {
			m.EXPECT().GetMyTasks(gomock.Any()).Return(nil, errBackendDown)
		}, `[]`},
		{"/api/vans", func(m *mocks.MockBackend) {
			m.EXPECT().GetVans(gomock.Any()).Return(nil, context.DeadlineExceeded)
		}, `[]`},
		{"/api/members?search=ann&role=driver", func(m *mocks.MockBackend) {
			m.EXPECT().GetMembers(gomock.Any(), model.MemberFilter{Search: "ann", Role: "DRIVER"}).Return(nil, errBackendDown)
		}, `[]`},
		{"/api/domains", func(m *mocks.MockBackend) {
			m.EXPECT().GetDomains(gomock.Any()).Return(nil, &backend.Error{Status: 500, Message: "Internal Server Error"})
		}, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := newAPIHarness(t)
			tt.expect(h.backend)

			rec := h.do(t, apiRequest{Method: http.MethodGet, Path: tt.path, Token: adminToken})
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestAPI_WritesPropagateBackendMessage(t *testing.T) {
	failure := &backend.Error{Op: "test", Status: http.StatusUnprocessableEntity, Message: "validation failed"}
	tests := []struct {
		pattern string
		path    string
		expect  func(m *mocks.MockBackend)
	}{
		{"POST /api/shifts", "/api/shifts", func(m *mocks.MockBackend) {
			m.EXPECT().CreateShift(gomock.Any(), gomock.Any()).Return(model.Shift{}, failure)
		}},
		{"POST /api/status/online", "/api/status/online", func(m *mocks.MockBackend) {
			m.EXPECT().GoOnline(gomock.Any(), model.GoOnlineRequest{VanID: "van-1"}).Return(model.DriverStatus{}, failure)
		}},
		{"POST /api/status/offline", "/api/status/offline", func(m *mocks.MockBackend) {
			m.EXPECT().GoOffline(gomock.Any()).Return(model.DriverStatus{}, failure)
		}},
		{"POST /api/tasks/{id}/complete", "/api/tasks/item-1/complete", func(m *mocks.MockBackend) {
			m.EXPECT().CompleteTask(gomock.Any(), "item-1").Return(model.Task{}, failure)
		}},
		{"POST /api/transfers/{id}/accept", "/api/transfers/item-1/accept", func(m *mocks.MockBackend) {
			m.EXPECT().AcceptTransfer(gomock.Any(), "item-1").Return(model.Transfer{}, failure)
		}},
		{"POST /api/walk-ons", "/api/walk-ons", func(m *mocks.MockBackend) {
			m.EXPECT().CreateWalkOn(gomock.Any(), gomock.Any()).Return(model.Ride{}, failure)
		}},
		{"PATCH /api/members/{id}", "/api/members/item-1", func(m *mocks.MockBackend) {
			m.EXPECT().UpdateMemberRole(gomock.Any(), "item-1", model.UpdateMemberRoleRequest{Role: "DRIVER"}).Return(model.Member{}, failure)
		}},
		{"DELETE /api/members/{id}", "/api/members/item-1", func(m *mocks.MockBackend) {
			m.EXPECT().RemoveMember(gomock.Any(), "item-1").Return(failure)
		}},
		{"POST /api/rides", "/api/rides", func(m *mocks.MockBackend) {
			m.EXPECT().CreateRide(gomock.Any(), gomock.Any()).Return(model.Ride{}, failure)
		}},
		{"POST /api/rides/{id}/cancel", "/api/rides/item-1/cancel", func(m *mocks.MockBackend) {
			m.EXPECT().CancelRide(gomock.Any(), "item-1", model.CancelRideRequest{Reason: "passenger left"}).Return(model.Ride{}, failure)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			h := newAPIHarness(t)
			tt.expect(h.backend)

			method, _, _ := strings.Cut(tt.pattern, " ")
			rec := h.do(t, apiRequest{Method: method, Path: tt.path, Body: sampleBodies[tt.pattern], Token: adminToken})
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"validation failed"}`, rec.Body.String())
		})
	}
}

func TestAPI_ShiftsReadFailureServesEmptyList(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().GetShifts(gomock.Any()).Return(nil, errors.New("boom"))

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/shifts", Token: memberToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAPI_CreateRideFailureReturnsBackendMessage(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().
		CreateRide(gomock.Any(), gomock.Any()).
		Return(model.Ride{}, &backend.Error{Op: "CreateRide", Status: 422, Message: "validation failed"})

	rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/rides", Body: sampleBodies["POST /api/rides"], Token: dispatcherToken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed"}`, rec.Body.String())
}

func TestAPI_TransportFailureOnWrite(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().GoOffline(gomock.Any()).
		Return(model.DriverStatus{}, &backend.Error{Op: "GoOffline", Message: "dispatch service unavailable", Err: errBackendDown})

	rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/status/offline", Token: driverToken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"dispatch service unavailable"}`, rec.Body.String())
}

func TestAPI_ReadsAreIdempotent(t *testing.T) {
	h := newAPIHarness(t)
	shifts := []model.Shift{{ID: "s1", Name: "Friday", StartsAt: time.Date(2025, 3, 7, 21, 0, 0, 0, time.UTC)}}
	h.backend.EXPECT().GetShifts(gomock.Any()).Return(shifts, nil).Times(2)

	first := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/shifts", Token: driverToken})
	second := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/shifts", Token: driverToken})

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestAPI_ValidationErrorsAreBadRequests(t *testing.T) {
	t.Run("malformed JSON never reaches the backend", func(t *testing.T) {
		h := newAPIHarness(t)
		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/rides", Body: `{"passengerName":`, Token: adminToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String())
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		h := newAPIHarness(t)
		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/status/online", Body: `{"van":"v1"}`, Token: driverToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trailing data after the JSON object", func(t *testing.T) {
		h := newAPIHarness(t)
		for _, body := range []string{`{"vanId":"v1"} {"vanId":"v2"}`, `{"vanId":"v1"}}`, `{"vanId":"v1"} x`} {
			rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/status/online", Body: body, Token: driverToken})
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.JSONEq(t, `{"error":"request body must contain a single JSON object"}`, rec.Body.String(), body)
		}
	})

	t.Run("trailing whitespace is fine", func(t *testing.T) {
		h := newAPIHarness(t)
		h.backend.EXPECT().GoOnline(gomock.Any(), model.GoOnlineRequest{VanID: "v1"}).Return(model.DriverStatus{Online: true}, nil)
		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/status/online", Body: "{\"vanId\":\"v1\"}\n\t ", Token: driverToken})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		h := newAPIHarness(t)
		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/rides/r1/cancel", Token: adminToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"request body is required"}`, rec.Body.String())
	})

	t.Run("client validation error", func(t *testing.T) {
		h := newAPIHarness(t)
		h.backend.EXPECT().CreateRide(gomock.Any(), gomock.Any()).
			Return(model.Ride{}, apperrors.ValidationField("partySize", "partySize must be at most 15"))
		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/rides", Body: sampleBodies["POST /api/rides"], Token: adminToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"partySize must be at most 15"}`, rec.Body.String())
	})
}

func TestAPI_SuccessResponses(t *testing.T) {
	t.Run("create returns 201 with the created ride", func(t *testing.T) {
		h := newAPIHarness(t)
		h.backend.EXPECT().CreateRide(gomock.Any(), model.CreateRideRequest{
			PassengerName: "Lee", Pickup: "The Anchor", Dropoff: "4 Oak Ave", PartySize: 1,
		}).Return(model.Ride{ID: "r-9", Status: model.RideStatusRequested}, nil)

		rec := h.do(t, apiRequest{Method: http.MethodPost, Path: "/api/rides", Body: sampleBodies["POST /api/rides"], Token: dispatcherToken})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"r-9"`)
	})

	t.Run("remove member returns 204", func(t *testing.T) {
		h := newAPIHarness(t)
		h.backend.EXPECT().RemoveMember(gomock.Any(), "m-3").Return(nil)

		rec := h.do(t, apiRequest{Method: http.MethodDelete, Path: "/api/members/m-3", Token: adminToken})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("status passes the van through", func(t *testing.T) {
		h := newAPIHarness(t)
		h.backend.EXPECT().GetMyStatus(gomock.Any()).
			Return(model.DriverStatus{Online: true, Van: &model.Van{ID: "v1", Name: "Van 1"}}, nil)

		rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/status", Token: driverToken})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"online":true`)
	})
}

func TestAPI_ClientIsScopedToCaller(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().GetMyTasks(gomock.Any()).Return([]model.Task{}, nil).Times(2)

	h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/tasks", Token: driverToken})
	h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/tasks", Token: dispatcherToken})

	require.Len(t, h.factory.sessions, 2)
	assert.Equal(t, "driver-1", h.factory.sessions[0].SubjectID)
	assert.Equal(t, domainauth.RoleDriver, h.factory.sessions[0].Role, "provider claims never raise the role")
	assert.Equal(t, "dispatcher-1", h.factory.sessions[1].SubjectID)
	assert.Equal(t, domainauth.RoleDispatcher, h.factory.sessions[1].Role)
}

func TestAPI_RoleChangesApplyOnNextRequest(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/members", Token: driverToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h.roles.Assign("driver-1", domainauth.RoleDispatcher)
	h.backend.EXPECT().GetMembers(gomock.Any(), model.MemberFilter{}).Return([]model.Member{}, nil)

	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/members", Token: driverToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_MemberRoleUpdateReachesRoleStore(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().
		UpdateMemberRole(gomock.Any(), "driver-1", model.UpdateMemberRoleRequest{Role: "DISPATCHER"}).
		Return(model.Member{ID: "driver-1", Role: "DISPATCHER"}, nil)

	rec := h.do(t, apiRequest{Method: http.MethodPatch, Path: "/api/members/driver-1", Body: `{"role":"dispatcher"}`, Token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.roles.Writes, 1)
	assert.Equal(t, "admin-1", h.roles.Writes[0].ChangedBy)

	// The promoted member holds the new capabilities on their very next request.
	h.backend.EXPECT().GetMembers(gomock.Any(), model.MemberFilter{}).Return([]model.Member{}, nil)
	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/members", Token: driverToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_MemberRoleUpdateUsesReportedSubject(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().
		UpdateMemberRole(gomock.Any(), "m-42", model.UpdateMemberRoleRequest{Role: "MEMBER"}).
		Return(model.Member{ID: "m-42", Subject: "driver-1", Role: "MEMBER"}, nil)

	rec := h.do(t, apiRequest{Method: http.MethodPatch, Path: "/api/members/m-42", Body: `{"role":"MEMBER"}`, Token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/tasks", Token: driverToken})
	assert.Equal(t, http.StatusForbidden, rec.Code, "demoted member lost the drive capability")
}

func TestAPI_MemberRemovalRevokesRole(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().RemoveMember(gomock.Any(), "driver-1").Return(nil)

	rec := h.do(t, apiRequest{Method: http.MethodDelete, Path: "/api/members/driver-1", Token: adminToken})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/tasks", Token: driverToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_MemberRoleStoreFailureIsReported(t *testing.T) {
	h := newAPIHarness(t)
	h.roles.WriteErr = errors.New("pq: connection reset")
	h.backend.EXPECT().
		UpdateMemberRole(gomock.Any(), "driver-1", model.UpdateMemberRoleRequest{Role: "ADMIN"}).
		Return(model.Member{ID: "driver-1", Role: "ADMIN"}, nil)

	rec := h.do(t, apiRequest{Method: http.MethodPatch, Path: "/api/members/driver-1", Body: `{"role":"ADMIN"}`, Token: adminToken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"member role changed but the role store was not updated"}`, rec.Body.String())
}

func TestAPI_FactoryFailure(t *testing.T) {
	h := newAPIHarness(t)
	h.factory.err = errors.New("signing key unavailable")

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/shifts", Token: adminToken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, apiRequest{Method: http.MethodPut, Path: "/api/shifts", Token: adminToken})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodGet)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
	assert.Zero(t, h.factory.calls())
}

func TestAPI_UnknownPathIsJSON(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/nowhere", Token: adminToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestEndpoint_FailureLogsBackendStatus(t *testing.T) {
	var logs bytes.Buffer
	b := mocks.NewMockBackend(gomock.NewController(t))
	b.EXPECT().GoOffline(gomock.Any()).
		Return(model.DriverStatus{}, &backend.Error{Op: "GoOffline", Status: http.StatusConflict, Message: "already offline"})

	deps := EndpointDeps{
		Backends: &recordingFactory{backend: b},
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
	}
	h := deps.Handler(Endpoint{
		Name: "status.offline", Capability: domainauth.CapDrive, Policy: WritePropagate,
		Call: func(_ http.ResponseWriter, r *http.Request, b ports.Backend) (any, error) {
			return b.GoOffline(r.Context())
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/status/offline", nil)
	req = req.WithContext(SetSessionInContext(req.Context(), domainauth.Session{SubjectID: "driver-1", Role: domainauth.RoleDriver}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"already offline"}`, rec.Body.String())
	assert.Contains(t, logs.String(), `"backend_op":"GoOffline"`)
	assert.Contains(t, logs.String(), `"backend_status":409`)
}
