package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

func (r *dashboardRepository) Stats(ctx context.Context, scope repository.DashboardScope) (*model.DashboardStats, error) {
	var w where
	if scope.DoctorID != nil {
		w.add("doctor_id = $%d", *scope.DoctorID)
	}

	// Revenue and outstanding come from invoices; a doctor sees invoices
	// attached to their own appointments only.
	invoiceScope := ""
	if scope.DoctorID != nil {
		invoiceScope = ` WHERE appointment_id IN (SELECT id FROM appointments WHERE doctor_id = $1)`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM patients) AS patients,
			(SELECT COUNT(*) FROM doctors) AS doctors,
			(SELECT COUNT(*) FROM appointments` + w.String() + `) AS appointments_total,
			(SELECT COUNT(*) FROM invoices` + invoiceScope + `) AS invoices_total,
			(SELECT COALESCE(SUM(paid_amount), 0) FROM invoices` + invoiceScope + `) AS revenue,
			(SELECT COALESCE(SUM(GREATEST(total_amount - paid_amount, 0)), 0) FROM invoices` + invoiceScope + `) AS outstanding
	`
	var stats model.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	counts := []model.StatusCount{}
	byStatus := `SELECT status, COUNT(*) AS count FROM appointments` + w.String() + ` GROUP BY status`
	if err := r.db.SelectContext(ctx, &counts, byStatus, w.args...); err != nil {
		return nil, fmt.Errorf("failed to count appointments by status: %w", err)
	}

	stats.AppointmentsStatus = make(map[string]int64, len(counts))
	for _, c := range counts {
		stats.AppointmentsStatus[c.Status] = c.Count
	}
	return &stats, nil
}
