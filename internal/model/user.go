package model

import "time"

// Role names carried in the JWT "role" claim.
const (
	RoleCustomer = "customer"
	RoleHost     = "host"
	RoleAdmin    = "admin"
)

// User represents an application user record as stored in the
// `users` table.  Optional profile columns are scanned through COALESCE
// so they are plain strings here.
//
// Fields:
//
//	ID           - UUID primary key.
//	Email        - unique, stored lower case.
//	PasswordHash - bcrypt hash, never serialized.
//	RoleID       - foreign key into user_roles.
//	Role         - role name resolved through the join.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	ImageURL     string    `json:"image_url"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Address      string    `json:"address"`
	ZipCode      string    `json:"zip_code"`
	PhoneNumber  string    `json:"phone_number"`
	RoleID       string    `json:"role_id"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name, skipping blanks.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// Role is a row of `user_roles`.
type Role struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Permissions StringList `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
