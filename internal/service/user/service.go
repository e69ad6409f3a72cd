package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type Service struct {
	repo    repository.UserRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		auditor: auditor,
	}
}

// checkRole refuses roles a stored user cannot hold, and keeps the
// superadmin role in the hands of privileged callers.
func checkRole(ctx context.Context, role model.RoleID) error {
	if !role.Assignable() {
		return errors.Validation("role %d cannot be assigned", int(role))
	}
	if role == model.RoleSuperuser && !ability.FromContext(ctx).Privileged() {
		return errors.Forbidden("only a super admin can assign the superadmin role")
	}
	return nil
}

// checkTarget keeps superadmin accounts out of reach of callers who could
// not create one.
func checkTarget(ctx context.Context, user *model.User) error {
	if user.RoleID == model.RoleSuperuser && !ability.FromContext(ctx).Privileged() {
		return errors.Forbidden("only a super admin can modify a superadmin")
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (user *model.User, err error) {
	defer func() {
		id := ""
		if user != nil {
			id = user.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourceUser, id, err)
	}()

	if err := checkRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Phone:        req.Phone,
		RoleID:       req.RoleID,
		Status:       model.UserStatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (user *model.User, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourceUser, id.String(), err)
	}()

	user, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTarget(ctx, user); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.RoleID != nil && *req.RoleID != user.RoleID {
		if err := checkRole(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = *req.RoleID
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionDelete, model.AuditResourceUser, id.String(), err)
	}()

	if p := ability.FromContext(ctx); p.UserID == id {
		return errors.Validation("users cannot delete themselves")
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTarget(ctx, user); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	filters.Normalize()
	users, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
