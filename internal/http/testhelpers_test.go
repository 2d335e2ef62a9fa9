package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/mocks"
	mockauth "github.com/saferide/dispatch-web/internal/mocks/auth"
	"github.com/saferide/dispatch-web/internal/ports"
	"github.com/saferide/dispatch-web/internal/service"
)

// Bearer tokens accepted by the test verifier, one per role, plus a subject
// the role store does not know.
const (
	adminToken      = "admin-token"
	dispatcherToken = "dispatcher-token"
	driverToken     = "driver-token"
	memberToken     = "member-token"
	orphanToken     = "orphan-token"
)

//nolint:gochecknoglobals // test fixture
var tokenForRole = map[domainauth.Role]string{
	domainauth.RoleAdmin:      adminToken,
	domainauth.RoleDispatcher: dispatcherToken,
	domainauth.RoleDriver:     driverToken,
	domainauth.RoleMember:     memberToken,
}

// recordingFactory hands out one backend and records who asked for it.
type recordingFactory struct {
	backend ports.Backend
	err     error

	mu       sync.Mutex
	sessions []domainauth.Session
}

func (f *recordingFactory) ForSession(_ context.Context, sess domainauth.Session) (ports.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sess)
	if f.err != nil {
		return nil, f.err
	}
	return f.backend, nil
}

func (f *recordingFactory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type apiHarness struct {
	backend *mocks.MockBackend
	factory *recordingFactory
	roles   *mockauth.StaticRoleStore
	logins  *mockauth.MemoryLoginStore
	handler http.Handler
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)

	roles := mockauth.NewStaticRoleStore(map[string]domainauth.Role{
		"admin-1":      domainauth.RoleAdmin,
		"dispatcher-1": domainauth.RoleDispatcher,
		"driver-1":     domainauth.RoleDriver,
		"member-1":     domainauth.RoleMember,
	})
	logins := mockauth.NewMemoryLoginStore()
	tokens := &mockauth.StaticTokenVerifier{Tokens: map[string]domainauth.Identity{
		adminToken:      {Subject: "admin-1", Email: "admin@example.org"},
		dispatcherToken: {Subject: "dispatcher-1"},
		driverToken:     {Subject: "driver-1", ClaimRoles: []string{"ADMIN"}},
		memberToken:     {Subject: "member-1"},
		orphanToken:     {Subject: "orphan-1"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := service.NewSessionResolver(service.SessionResolverOptions{
		Stores: service.ResolverStores{Logins: logins, Tokens: tokens, Roles: roles},
		Config: service.ResolverConfig{Logger: logger},
	})
	factory := &recordingFactory{backend: backend}

	return &apiHarness{
		backend: backend,
		factory: factory,
		roles:   roles,
		logins:  logins,
		handler: NewRouter(RouterServices{
			Sessions:     resolver,
			Backends:     factory,
			Roles:        roles,
			CSRFDisabled: true,
			Logger:       logger,
		}),
	}
}

type apiRequest struct {
	Method string
	Path   string
	Body   string
	Token  string
	Cookie string
}

func (h *apiHarness) do(t *testing.T, req apiRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	r := httptest.NewRequest(req.Method, req.Path, body)
	if req.Body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.Cookie != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: req.Cookie})
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	return rec
}

var errBackendDown = errors.New("dial tcp 10.0.0.7:443: connect: connection refused")
