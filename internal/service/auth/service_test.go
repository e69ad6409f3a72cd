package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type fixture struct {
	svc    *Service
	users  *mocks.UserRepository
	audits *mocks.AuditRepository
	jwt    *auth.Manager
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T, superAdmin config.SuperAdminConfig) *fixture {
	users := &mocks.UserRepository{}
	audits := &mocks.AuditRepository{}
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	jwt := auth.NewManager("test-secret", "clinic-api", time.Hour)

	svc := NewService(users, jwt, security.NewBcryptHasher(bcrypt.MinCost), superAdmin, audit.NewService(audits))
	return &fixture{svc: svc, users: users, audits: audits, jwt: jwt}
}

func TestLoginSuperAdmin(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{Email: "root@clinic.test", PasswordHash: hash(t, "s3cret-pass")})

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "ROOT@clinic.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)

	session, err := f.jwt.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, session.RoleID)
	assert.Equal(t, uuid.Nil, session.UserID)
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLoginSuperAdminWrongPassword(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{Email: "root@clinic.test", PasswordHash: hash(t, "s3cret-pass")})

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "root@clinic.test", Password: "nope"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	f.audits.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Status == model.AuditStatusFailure && l.Action == model.AuditActionLogin
	}))
}

func TestLoginStoredUser(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{})
	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        "doc@clinic.test",
		PasswordHash: hash(t, "doctor-pass"),
		RoleID:       model.RoleDoctor,
		Status:       model.UserStatusActive,
	}
	f.users.On("GetByEmail", mock.Anything, "doc@clinic.test").Return(user, nil)
	f.users.On("UpdateLastLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "doc@clinic.test", Password: "doctor-pass"})
	require.NoError(t, err)

	session, err := f.jwt.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, model.RoleDoctor, session.RoleID)
	assert.False(t, session.IsAdmin)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{})
	f.users.On("GetByEmail", mock.Anything, "ghost@clinic.test").Return(nil, errors.NotFound("user", nil))

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "ghost@clinic.test", Password: "whatever"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLoginInactiveUser(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{})
	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        "old@clinic.test",
		PasswordHash: hash(t, "old-password"),
		RoleID:       model.RoleAdmin,
		Status:       model.UserStatusInactive,
	}
	f.users.On("GetByEmail", mock.Anything, "old@clinic.test").Return(user, nil)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "old@clinic.test", Password: "old-password"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestMe(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{})

	_, err := f.svc.Me(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	p := &ability.Principal{
		UserID:  uuid.New(),
		RoleID:  model.RolePatient,
		Ability: ability.Build(ability.RulesForRole(model.RolePatient)),
	}
	me, err := f.svc.Me(ability.WithPrincipal(context.Background(), p))
	require.NoError(t, err)
	assert.Equal(t, p.UserID, me.UserID)
	assert.Len(t, me.Rules, 4)
}

func TestMeGuestSession(t *testing.T) {
	f := newFixture(t, config.SuperAdminConfig{})

	p := &ability.Principal{
		UserID:  uuid.New(),
		RoleID:  model.RoleGuest,
		Ability: ability.Build(ability.RulesForRole(model.RoleGuest)),
	}
	me, err := f.svc.Me(ability.WithPrincipal(context.Background(), p))
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, me.RoleID)
	assert.Len(t, me.Rules, 2)
}
