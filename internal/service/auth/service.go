package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

var ErrInvalidCredentials = stderrors.New("invalid credentials")

type Service struct {
	userRepo   repository.UserRepository
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	superAdmin config.SuperAdminConfig
	auditor    *audit.Service
	now        func() time.Time
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	superAdmin config.SuperAdminConfig, auditor *audit.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtSvc:     jwtSvc,
		hasher:     hasher,
		superAdmin: superAdmin,
		auditor:    auditor,
		now:        time.Now,
	}
}

// Login checks the env super admin credential first, then stored users.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	session, err := s.authenticate(ctx, req.Email, req.Password)

	auditCtx := ctx
	resourceID := strings.ToLower(req.Email)
	if session != nil {
		auditCtx = ability.WithPrincipal(ctx, &ability.Principal{UserID: session.UserID, RoleID: session.RoleID})
		resourceID = session.UserID.String()
	}
	s.auditor.Track(auditCtx, model.AuditActionLogin, model.AuditResourceUser, resourceID, err)

	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtSvc.Generate(session)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresAt.Sub(s.now()).Seconds()),
	}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*model.Session, error) {
	if s.superAdmin.Enabled() && strings.EqualFold(email, s.superAdmin.Email) {
		if err := s.hasher.Compare(s.superAdmin.PasswordHash, password); err != nil {
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return &model.Session{
			UserID:  uuid.Nil,
			RoleID:  model.RoleSuperAdmin,
			IsAdmin: true,
			Email:   s.superAdmin.Email,
		}, nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized(ErrInvalidCredentials)
	}
	if user.Status != model.UserStatusActive {
		return nil, errors.Unauthorized(stderrors.New("account is inactive"))
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	return &model.Session{
		UserID:  user.ID,
		RoleID:  user.RoleID,
		IsAdmin: user.IsAdmin(),
		Email:   user.Email,
	}, nil
}

// MeResponse is the session plus the rules it was granted, so a client can
// decide what to show.
type MeResponse struct {
	model.Session
	Rules []ability.Rule `json:"rules"`
}

func (s *Service) Me(ctx context.Context) (*MeResponse, error) {
	p := ability.FromContext(ctx)
	if !p.Authenticated() {
		return nil, errors.Unauthorized(nil)
	}
	return &MeResponse{
		Session: model.Session{
			UserID:  p.UserID,
			RoleID:  p.RoleID,
			IsAdmin: p.IsAdmin,
			Email:   p.Email,
		},
		Rules: p.Ability.Rules(),
	}, nil
}
