package dashboard

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
)

type Service struct {
	repo     repository.DashboardRepository
	resolver *scope.Resolver
}

func NewService(repo repository.DashboardRepository, resolver *scope.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// Stats summarises the clinic. Doctors only see figures for their own
// appointments and the invoices raised against them.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if sc.Empty() {
		return &model.DashboardStats{
			AppointmentsStatus: map[string]int64{},
			Revenue:            decimal.Zero,
			Outstanding:        decimal.Zero,
		}, nil
	}

	var filter repository.DashboardScope
	if sc.AsDoctor() {
		filter.DoctorID = sc.DoctorID
	}
	return s.repo.Stats(ctx, filter)
}
