package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", "clinic-api", time.Hour)
	session := &model.Session{UserID: uuid.New(), RoleID: model.RoleDoctor, Email: "doc@example.com"}

	token, expiresAt, err := m.Generate(session)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestValidateSuperAdminSession(t *testing.T) {
	m := NewManager("secret", "clinic-api", time.Hour)

	token, _, err := m.Generate(&model.Session{RoleID: model.RoleSuperAdmin, IsAdmin: true})
	require.NoError(t, err)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.UserID)
	assert.Equal(t, model.RoleSuperAdmin, got.RoleID)
	assert.True(t, got.IsAdmin)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager("secret", "clinic-api", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Generate(&model.Session{UserID: uuid.New(), RoleID: model.RolePatient})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, _, err := NewManager("secret", "clinic-api", time.Hour).Generate(&model.Session{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewManager("other", "clinic-api", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager("secret", "someone-else", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewManager("secret", "clinic-api", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
