package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func newService() (*Service, *mocks.UserRepository) {
	repo := &mocks.UserRepository{}
	audits := &mocks.AuditRepository{}
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)
	return NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), audit.NewService(audits)), repo
}

func as(role model.RoleID) context.Context {
	p := &ability.Principal{UserID: uuid.New(), RoleID: role, Ability: ability.Build(ability.RulesForRole(role))}
	return ability.WithPrincipal(context.Background(), p)
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newService()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	u, err := svc.CreateUser(as(model.RoleAdmin), &model.CreateUserRequest{
		Email: "dr@clinic.test", Name: "Dr Who", Password: "correct-horse", RoleID: model.RoleDoctor,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")))
	assert.Equal(t, model.UserStatusActive, u.Status)
}

func TestCreateUserRoleRules(t *testing.T) {
	tests := []struct {
		name   string
		caller model.RoleID
		role   model.RoleID
		code   errors.ErrorCode
	}{
		{"env role is never stored", model.RoleSuperAdmin, model.RoleSuperAdmin, errors.ErrBadRequest},
		{"unknown role", model.RoleSuperAdmin, model.RoleID(999), errors.ErrBadRequest},
		{"admin cannot mint superadmins", model.RoleAdmin, model.RoleSuperuser, errors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService()
			_, err := svc.CreateUser(as(tt.caller), &model.CreateUserRequest{
				Email: "x@clinic.test", Name: "X", Password: "long-enough", RoleID: tt.role,
			})
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSuperAdminCanCreateSuperuser(t *testing.T) {
	svc, repo := newService()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateUser(as(model.RoleSuperAdmin), &model.CreateUserRequest{
		Email: "root@clinic.test", Name: "Root", Password: "long-enough", RoleID: model.RoleSuperuser,
	})
	require.NoError(t, err)
}

func TestAdminCannotDemoteSuperuser(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{Base: model.Base{ID: id}, RoleID: model.RoleSuperuser}, nil)

	role := model.RoleAdmin
	_, err := svc.UpdateUser(as(model.RoleAdmin), id, &model.UpdateUserRequest{RoleID: &role})
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUserFields(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{Base: model.Base{ID: id}, Name: "Old", RoleID: model.RolePatient, Status: model.UserStatusActive}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	name, status := "New", model.UserStatusInactive
	u, err := svc.UpdateUser(as(model.RoleAdmin), id, &model.UpdateUserRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)
	assert.Equal(t, model.UserStatusInactive, u.Status)
	assert.Equal(t, model.RolePatient, u.RoleID)
}

func TestDeleteSelfRejected(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	p := &ability.Principal{UserID: id, RoleID: model.RoleAdmin, Ability: ability.Build(ability.RulesForRole(model.RoleAdmin))}

	err := svc.DeleteUser(ability.WithPrincipal(context.Background(), p), id)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAdminCannotTakeOverSuperuser(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{
		Base: model.Base{ID: id}, Email: "owner@clinic.test", RoleID: model.RoleSuperuser, PasswordHash: "original",
	}, nil)

	pw, email := "admin-chosen", "admin-owned@clinic.test"
	_, err := svc.UpdateUser(as(model.RoleAdmin), id, &model.UpdateUserRequest{Password: &pw, Email: &email})
	assert.True(t, errors.Is(err, errors.ErrForbidden), "got %v", err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdminCannotDeleteSuperuser(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{Base: model.Base{ID: id}, RoleID: model.RoleSuperuser}, nil)

	err := svc.DeleteUser(as(model.RoleAdmin), id)
	assert.True(t, errors.Is(err, errors.ErrForbidden), "got %v", err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSuperAdminManagesSuperuser(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{Base: model.Base{ID: id}, RoleID: model.RoleSuperuser}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	pw := "rotated-secret"
	_, err := svc.UpdateUser(as(model.RoleSuperAdmin), id, &model.UpdateUserRequest{Password: &pw})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(as(model.RoleSuperAdmin), id))
}

func TestAdminDeletesDoctor(t *testing.T) {
	svc, repo := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.User{Base: model.Base{ID: id}, RoleID: model.RoleDoctor}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.DeleteUser(as(model.RoleAdmin), id))
	repo.AssertExpectations(t)
}
