package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const userColumns = `id, email, name, password_hash, phone, role_id, status, last_login_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, name, password_hash, phone, role_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Name,
		user.PasswordHash,
		user.Phone,
		user.RoleID,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err, "user"))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, name = $2, password_hash = $3, phone = $4,
			role_id = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		strings.ToLower(user.Email),
		user.Name,
		user.PasswordHash,
		user.Phone,
		user.RoleID,
		user.Status,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err, "user"))
	}
	return expectOne(result, "user")
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", translateDelete(err, "user"))
	}
	return expectOne(result, "user")
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	var w where
	if filters.RoleID != nil {
		w.add("role_id = $%d", *filters.RoleID)
	}
	if filters.Status != "" {
		w.add("status = $%d", filters.Status)
	}
	if filters.SearchTerm != "" {
		w.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+filters.SearchTerm+"%")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	limit, args := w.page(filters.Limit, filters.Offset)
	query := `SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at DESC` + limit

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetLinks returns the patient and doctor rows attached to the user.
func (r *userRepository) GetLinks(ctx context.Context, id uuid.UUID) (*model.UserLink, error) {
	query := `
		SELECT u.id AS user_id,
			(SELECT p.id FROM patients p WHERE p.user_id = u.id) AS patient_id,
			(SELECT d.id FROM doctors d WHERE d.user_id = u.id) AS doctor_id
		FROM users u
		WHERE u.id = $1
	`
	var link model.UserLink
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user links: %w", translate(err, "user"))
	}
	return &link, nil
}
