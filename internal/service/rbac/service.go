package rbac

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type Service struct {
	users   repository.UserRepository
	roles   repository.RoleRepository
	auditor *audit.Service
	grants  *cache.Cache
}

// NewService caches each role's grant rows for grantTTL. A zero TTL
// disables the cache.
func NewService(users repository.UserRepository, roles repository.RoleRepository, auditor *audit.Service, grantTTL time.Duration) *Service {
	s := &Service{
		users:   users,
		roles:   roles,
		auditor: auditor,
	}
	if grantTTL > 0 {
		s.grants = cache.New(grantTTL, 2*grantTTL)
	}
	return s
}

// PrincipalFor builds the caller's ability. Any failure to load the user or
// the role's grants yields a principal that can do nothing.
func (s *Service) PrincipalFor(ctx context.Context, session *model.Session) *ability.Principal {
	p := &ability.Principal{
		UserID:  session.UserID,
		RoleID:  session.RoleID,
		IsAdmin: session.IsAdmin,
		Email:   session.Email,
	}

	if session.RoleID == model.RoleSuperAdmin {
		p.Ability = ability.Build(ability.RulesForRole(model.RoleSuperAdmin))
		return p
	}

	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", session.UserID.String()).Msg("user lookup failed, denying all")
		p.Ability = ability.Build(nil)
		return p
	}
	if user.Status != model.UserStatusActive {
		p.Ability = ability.Build(nil)
		return p
	}
	p.RoleID = user.RoleID
	p.IsAdmin = user.IsAdmin()

	rules, err := s.rulesFor(ctx, user.RoleID)
	if err != nil {
		log.Warn().Err(err).Stringer("role", user.RoleID).Msg("grant lookup failed, denying all")
		p.Ability = ability.Build(nil)
		return p
	}
	p.Ability = ability.Build(rules)
	return p
}

// rulesFor prefers the role's persisted grants and falls back to the fixed
// table when the role has none.
func (s *Service) rulesFor(ctx context.Context, role model.RoleID) ([]ability.Rule, error) {
	grants, err := s.cachedGrants(ctx, role)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return ability.RulesForRole(role), nil
	}
	return ability.FromGrants(grants), nil
}

func (s *Service) cachedGrants(ctx context.Context, role model.RoleID) ([]model.RolePermission, error) {
	key := role.String()
	if s.grants != nil {
		if cached, ok := s.grants.Get(key); ok {
			return cached.([]model.RolePermission), nil
		}
	}

	grants, err := s.roles.ListGrants(ctx, role)
	if err != nil {
		return nil, err
	}
	if s.grants != nil {
		s.grants.SetDefault(key, grants)
	}
	return grants, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return s.roles.List(ctx)
}

func (s *Service) Grants(ctx context.Context, role model.RoleID) ([]model.RolePermission, error) {
	if _, err := s.roles.Get(ctx, role); err != nil {
		return nil, err
	}
	return s.roles.ListGrants(ctx, role)
}

// ReplaceGrants overwrites a role's persisted grants. Every row must name a
// known subject and action. An empty set returns the role to the fixed table.
func (s *Service) ReplaceGrants(ctx context.Context, role model.RoleID, grants []model.RolePermission) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourceRole, fmt.Sprint(int(role)), err)
	}()

	if !role.Assignable() {
		return errors.Validation("role %d does not accept grants", int(role))
	}
	if _, err := s.roles.Get(ctx, role); err != nil {
		return err
	}

	normalized := make([]model.RolePermission, 0, len(grants))
	for _, g := range grants {
		g.RoleID = role
		g.Subject = strings.ToUpper(strings.TrimSpace(g.Subject))
		g.Action = strings.ToUpper(strings.TrimSpace(g.Action))
		if !ability.KnownGrant(g) {
			return errors.Validation("unknown grant %s/%s", g.Subject, g.Action)
		}
		normalized = append(normalized, g)
	}

	if err := s.roles.ReplaceGrants(ctx, role, normalized); err != nil {
		return fmt.Errorf("failed to replace grants: %w", err)
	}
	if s.grants != nil {
		s.grants.Delete(role.String())
	}
	return nil
}
