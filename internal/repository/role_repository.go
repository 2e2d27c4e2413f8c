package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
)

// RoleRepo manages user_roles.
type RoleRepo struct{ db *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

const roleColumns = "id, name, description, permissions, created_at, updated_at"

func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roleColumns+" FROM user_roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Role{}
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Permissions, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (model.Role, error) {
	var ro model.Role
	err := r.db.QueryRowContext(ctx, "SELECT "+roleColumns+" FROM user_roles WHERE id = ?", id).
		Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Permissions, &ro.CreatedAt, &ro.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ro, ErrNotFound
	}
	return ro, err
}

// Create inserts a role; a taken name returns ErrDuplicate.
func (r *RoleRepo) Create(ctx context.Context, ro *model.Role) error {
	if ro.ID == "" {
		ro.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO user_roles (id, name, description, permissions) VALUES (?, ?, ?, ?)",
		ro.ID, ro.Name, ro.Description, ro.Permissions)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Upsert inserts the role or refreshes its description and permissions.
// Used by the seed command.
func (r *RoleRepo) Upsert(ctx context.Context, ro model.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (id, name, description, permissions) VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE description = VALUES(description), permissions = VALUES(permissions)`,
		uuid.NewString(), ro.Name, ro.Description, ro.Permissions)
	return err
}

func (r *RoleRepo) Update(ctx context.Context, ro model.Role) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE user_roles SET name = ?, description = ?, permissions = ? WHERE id = ?",
		ro.Name, ro.Description, ro.Permissions, ro.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// Delete removes a role.  Roles still assigned to users return ErrConflict.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_roles WHERE id = ?", id)
	if err != nil {
		if isForeignKey(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
