package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
	"github.com/saferide/dispatch-web/internal/domain/model"
	apperrors "github.com/saferide/dispatch-web/internal/errors"
	"github.com/saferide/dispatch-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.TokenVerifier = (*StaticTokenVerifier)(nil)
	_ ports.LoginStore    = (*MemoryLoginStore)(nil)
	_ ports.RoleStore     = (*StaticRoleStore)(nil)
	_ ports.RoleWriter    = (*StaticRoleStore)(nil)
)

// ErrNotFound is returned by doubles when an entity is not present.
var ErrNotFound = apperrors.NotFound("not found")

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	LogoutURL   string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			Subject: "mock-user-1",
			Email:   "mock.user@example.com",
			Name:    "Mock User",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

func (m *MockAuthProvider) EndSessionURL(postLogoutRedirect string) string {
	if m.LogoutURL == "" {
		return ""
	}
	return m.LogoutURL + "?post_logout_redirect_uri=" + postLogoutRedirect
}

// StaticTokenVerifier accepts only the tokens present in Tokens.
type StaticTokenVerifier struct {
	Tokens map[string]domainauth.Identity
	// Err, when set, is returned for every call.
	Err error
}

func (v *StaticTokenVerifier) VerifyAccessToken(_ context.Context, raw string) (domainauth.Identity, error) {
	if v.Err != nil {
		return domainauth.Identity{}, v.Err
	}
	id, ok := v.Tokens[raw]
	if !ok {
		return domainauth.Identity{}, errors.New("token rejected")
	}
	return id, nil
}

// MemoryLoginStore is an in-memory login store for unit tests.
type MemoryLoginStore struct {
	mu     sync.Mutex
	logins map[string]domainauth.Login
	// GetErr, when set, is returned by Get to simulate an unreachable store.
	GetErr error
}

// NewMemoryLoginStore creates a new in-memory login store.
func NewMemoryLoginStore() *MemoryLoginStore {
	return &MemoryLoginStore{logins: make(map[string]domainauth.Login)}
}

func (m *MemoryLoginStore) Save(_ context.Context, login domainauth.Login) error {
	if login.ID == "" {
		return errors.New("login ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[login.ID] = login
	return nil
}

func (m *MemoryLoginStore) Get(_ context.Context, id string) (domainauth.Login, error) {
	if m.GetErr != nil {
		return domainauth.Login{}, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	login, ok := m.logins[id]
	if !ok {
		return domainauth.Login{}, ErrNotFound
	}
	return login, nil
}

func (m *MemoryLoginStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logins, id)
	return nil
}

// Len reports how many logins are stored.
func (m *MemoryLoginStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logins)
}

// StaticRoleStore serves roles from a map. Subjects missing from Roles are NotFound.
// Safe for concurrent use; Assign may be called between requests to simulate admin edits.
// It also implements ports.RoleWriter and records every write.
type StaticRoleStore struct {
	mu    sync.Mutex
	roles map[string]domainauth.Role
	// Err, when set, is returned for every lookup.
	Err error
	// WriteErr, when set, is returned by Set and Delete.
	WriteErr error
	// Calls counts RoleFor invocations.
	Calls int
	// Writes records Set requests and deletions (Role empty) in order.
	Writes []model.SetRoleRequest
}

// NewStaticRoleStore builds a store from subject → role pairs.
func NewStaticRoleStore(roles map[string]domainauth.Role) *StaticRoleStore {
	cp := make(map[string]domainauth.Role, len(roles))
	for k, v := range roles {
		cp[k] = v
	}
	return &StaticRoleStore{roles: cp}
}

// Assign sets role for subject without recording a write.
func (s *StaticRoleStore) Assign(subject string, role domainauth.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[subject] = role
}

// Set implements ports.RoleWriter.
func (s *StaticRoleStore) Set(_ context.Context, req model.SetRoleRequest) (*model.RoleAssignment, error) {
	req.Normalize()
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return nil, s.WriteErr
	}
	s.Writes = append(s.Writes, req)
	s.roles[req.Subject] = domainauth.Role(req.Role)
	return &model.RoleAssignment{Subject: req.Subject, Role: req.Role}, nil
}

// Delete implements ports.RoleWriter.
func (s *StaticRoleStore) Delete(_ context.Context, subject, changedBy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return false, s.WriteErr
	}
	s.Writes = append(s.Writes, model.SetRoleRequest{Subject: subject, ChangedBy: changedBy})
	_, ok := s.roles[subject]
	delete(s.roles, subject)
	return ok, nil
}

func (s *StaticRoleStore) RoleFor(_ context.Context, subject string) (domainauth.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	role, ok := s.roles[subject]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}
