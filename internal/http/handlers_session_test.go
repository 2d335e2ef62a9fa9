package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
)

func TestSessionEndpoint_PerRole(t *testing.T) {
	tests := []struct {
		role   domainauth.Role
		canOps bool
	}{
		{domainauth.RoleAdmin, true},
		{domainauth.RoleDispatcher, true},
		{domainauth.RoleDriver, false},
		{domainauth.RoleMember, false},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			h := newAPIHarness(t)
			rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/session", Token: tokenForRole[tt.role]})
			require.Equal(t, http.StatusOK, rec.Code)

			var got SessionView
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.True(t, got.Authenticated)
			assert.Equal(t, tt.role.String(), got.Role)
			assert.Equal(t, tt.canOps, got.CanManageOperations)
		})
	}
}

func TestSessionEndpoint_ResolutionFailures(t *testing.T) {
	tests := []struct {
		name string
		req  apiRequest
	}{
		{"no credentials", apiRequest{}},
		{"unknown bearer", apiRequest{Token: "forged"}},
		{"unknown cookie", apiRequest{Cookie: "no-such-login"}},
		{"no role assigned", apiRequest{Token: orphanToken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAPIHarness(t)
			tt.req.Method, tt.req.Path = http.MethodGet, "/api/session"
			rec := h.do(t, tt.req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"authenticated":false,"canManageOperations":false}`, rec.Body.String())
		})
	}
}

func TestSessionEndpoint_CookieLogin(t *testing.T) {
	h := newAPIHarness(t)
	require.NoError(t, h.logins.Save(t.Context(), domainauth.Login{
		ID: "login-1", Subject: "dispatcher-1", Email: "d@example.org", Name: "Dee", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, h.logins.Save(t.Context(), domainauth.Login{
		ID: "login-old", Subject: "admin-1", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/session", Cookie: "login-1"})
	assert.JSONEq(t, `{"authenticated":true,"subjectId":"dispatcher-1","email":"d@example.org","name":"Dee","role":"DISPATCHER","canManageOperations":true}`, rec.Body.String())

	rec = h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/session", Cookie: "login-old"})
	assert.JSONEq(t, `{"authenticated":false,"canManageOperations":false}`, rec.Body.String())
}

func TestSessionEndpoint_BearerTakesPrecedence(t *testing.T) {
	h := newAPIHarness(t)
	require.NoError(t, h.logins.Save(t.Context(), domainauth.Login{
		ID: "login-admin", Subject: "admin-1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/session", Cookie: "login-admin", Token: memberToken})
	var got SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "member-1", got.SubjectID)
	assert.False(t, got.CanManageOperations)
}

func TestDashboard_DegradesPerSection(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().GetMyStatus(gomock.Any()).Return(model.DriverStatus{}, errors.New("timeout"))
	h.backend.EXPECT().GetMyTasks(gomock.Any()).Return([]model.Task{{ID: "t1", Kind: model.TaskKindPickup}}, nil)
	h.backend.EXPECT().GetShifts(gomock.Any()).Return(nil, errors.New("boom"))

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/dashboard", Token: driverToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var got Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Status)
	assert.False(t, got.Status.Online)
	assert.Nil(t, got.Status.Van)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "t1", got.Tasks[0].ID)
	assert.NotNil(t, got.Shifts)
	assert.Empty(t, got.Shifts)
	assert.ElementsMatch(t, []string{"dashboard.status", "dashboard.shifts"}, got.Degraded)
	assert.Equal(t, "DRIVER", got.Session.Role)
}

func TestDashboard_MemberSeesOnlyShifts(t *testing.T) {
	h := newAPIHarness(t)
	h.backend.EXPECT().GetShifts(gomock.Any()).Return([]model.Shift{{ID: "s1"}}, nil)

	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/dashboard", Token: memberToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `null`, string(raw["status"]))
	assert.JSONEq(t, `null`, string(raw["tasks"]))
	assert.Contains(t, string(raw["shifts"]), `"s1"`)
	assert.JSONEq(t, `[]`, string(raw["degraded"]))
}

func TestDashboard_RequiresSession(t *testing.T) {
	h := newAPIHarness(t)
	rec := h.do(t, apiRequest{Method: http.MethodGet, Path: "/api/dashboard"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
	assert.Zero(t, h.factory.calls(), "no backend client is built without a session")
}
