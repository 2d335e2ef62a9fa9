// Package mocks provides generated mocks for the gateway's port interfaces.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().GetShifts(gomock.Any()).Return(nil, errors.New("down"))
package mocks

// Generate mock for the Backend interface from internal/ports.
// This creates MockBackend with a recorder for every dispatch API operation.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/saferide/dispatch-web/internal/ports Backend
