package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func (r *roleRepository) Get(ctx context.Context, id model.RoleID) (*model.Role, error) {
	var role model.Role
	err := r.db.GetContext(ctx, &role, `SELECT id, name, description FROM roles WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", translate(err, "role"))
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]*model.Role, error) {
	roles := []*model.Role{}
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name, description FROM roles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *roleRepository) ListGrants(ctx context.Context, roleID model.RoleID) ([]model.RolePermission, error) {
	query := `
		SELECT role_id, subject, action, can_access
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY subject, action
	`
	grants := []model.RolePermission{}
	if err := r.db.SelectContext(ctx, &grants, query, roleID); err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	return grants, nil
}

// ReplaceGrants swaps a role's grant set in one transaction.
func (r *roleRepository) ReplaceGrants(ctx context.Context, roleID model.RoleID, grants []model.RolePermission) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return fmt.Errorf("failed to clear role grants: %w", err)
		}

		query := `
			INSERT INTO role_permissions (role_id, subject, action, can_access)
			VALUES ($1, $2, $3, $4)
		`
		for _, g := range grants {
			if _, err := tx.ExecContext(ctx, query, roleID, g.Subject, g.Action, g.CanAccess); err != nil {
				return fmt.Errorf("failed to insert role grant: %w", translate(err, "role grant"))
			}
		}
		return nil
	})
}
