package httpx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/saferide/dispatch-web/internal/domain/auth"
)

func TestSessionContext(t *testing.T) {
	_, ok := GetSessionFromContext(context.Background())
	assert.False(t, ok)

	sess := domainauth.Session{SubjectID: "abc", Role: domainauth.RoleDriver}
	got, ok := GetSessionFromContext(SetSessionInContext(context.Background(), sess))
	assert.True(t, ok)
	assert.Equal(t, sess, got)

	_, ok = GetSessionFromContext(SetSessionInContext(context.Background(), domainauth.Session{}))
	assert.False(t, ok, "a session without a subject is not a session")
}

func TestResolutionErrorContext(t *testing.T) {
	assert.NoError(t, GetResolutionError(context.Background()))

	want := errors.New("role store down")
	assert.Equal(t, want, GetResolutionError(setResolutionError(context.Background(), want)))
}
