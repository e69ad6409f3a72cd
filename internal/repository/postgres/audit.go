package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, user_id, role_id, action, resource_type, resource_id,
			status, error_message, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.RoleID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.Status,
		log.ErrorMessage,
		log.IPAddress,
		log.UserAgent,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	var w where
	if filters.UserID != nil {
		w.add("user_id = $%d", *filters.UserID)
	}
	if filters.ResourceType != "" {
		w.add("resource_type = $%d", filters.ResourceType)
	}
	if filters.ResourceID != "" {
		w.add("resource_id = $%d", filters.ResourceID)
	}
	if filters.Action != "" {
		w.add("action = $%d", filters.Action)
	}
	if filters.Status != "" {
		w.add("status = $%d", filters.Status)
	}
	if filters.From != nil {
		w.add("created_at >= $%d", *filters.From)
	}
	if filters.To != nil {
		w.add("created_at < $%d", filters.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	limit, args := w.page(filters.Limit, filters.Offset)
	query := `
		SELECT id, user_id, role_id, action, resource_type, resource_id,
			status, error_message, ip_address, user_agent, created_at
		FROM audit_logs` + w.String() + ` ORDER BY created_at DESC` + limit

	logs := []*model.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return result.RowsAffected()
}
