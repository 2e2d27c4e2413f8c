package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.email, u.password_hash,
	COALESCE(u.username,''), COALESCE(u.first_name,''), COALESCE(u.last_name,''),
	COALESCE(u.image_url,''), COALESCE(u.country,''), COALESCE(u.city,''),
	COALESCE(u.address,''), COALESCE(u.zip_code,''), COALESCE(u.phone_number,''),
	u.role_id, r.name, u.is_active, u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash,
		&u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.Country, &u.City,
		&u.Address, &u.ZipCode, &u.PhoneNumber,
		&u.RoleID, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with the named role and returns its ID.  The role
// id is resolved in the same statement; an unknown role yields ErrNotFound.
func (r *UserRepo) Create(ctx context.Context, u model.User, password, role string, cost int) (string, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, username, first_name, last_name, role_id)
		 SELECT ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), id FROM user_roles WHERE name = ?`,
		id, email, hash, u.Username, u.FirstName, u.LastName, role)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", ErrNotFound
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN user_roles r ON r.id = u.role_id WHERE u.email = ? LIMIT 1",
		email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN user_roles r ON r.id = u.role_id WHERE u.id = ? LIMIT 1",
		id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN user_roles r ON r.id = u.role_id ORDER BY u.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserProfile holds the editable profile columns.  Nil fields are left
// untouched.
type UserProfile struct {
	Username    *string
	FirstName   *string
	LastName    *string
	ImageURL    *string
	Country     *string
	City        *string
	Address     *string
	ZipCode     *string
	PhoneNumber *string
}

// UpdateProfile applies the non-nil fields of p.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p UserProfile) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	add("username", p.Username)
	add("first_name", p.FirstName)
	add("last_name", p.LastName)
	add("image_url", p.ImageURL)
	add("country", p.Country)
	add("city", p.City)
	add("address", p.Address)
	add("zip_code", p.ZipCode)
	add("phone_number", p.PhoneNumber)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

// SetRole moves a user to the named role.
func (r *UserRepo) SetRole(ctx context.Context, id, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users u JOIN user_roles r ON r.name = ? SET u.role_id = r.id WHERE u.id = ?",
		role, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
