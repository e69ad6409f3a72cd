package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type clientInfoKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClientInfo stores the request's address and user agent for audit rows
// written further down the call chain.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// Track records the outcome of a gated mutation for the caller on ctx. A nil
// cause is a success. Write failures are logged and swallowed.
func (s *Service) Track(ctx context.Context, action, resourceType, resourceID string, cause error) {
	if s == nil {
		return
	}
	p := ability.FromContext(ctx)

	entry := &model.AuditLog{
		UserID:       p.UserID,
		RoleID:       p.RoleID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       model.AuditStatusSuccess,
		CreatedAt:    s.now(),
	}
	if cause != nil {
		msg := cause.Error()
		entry.Status = model.AuditStatusFailure
		entry.ErrorMessage = &msg
	}
	if info, ok := ctx.Value(clientInfoKey{}).(clientInfo); ok {
		entry.IPAddress = info.ip
		entry.UserAgent = info.userAgent
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn().
			Err(err).
			Str("action", action).
			Str("resource_type", resourceType).
			Str("resource_id", resourceID).
			Msg("failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.Cleanup(ctx, before)
}
