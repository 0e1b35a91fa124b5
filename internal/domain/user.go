package domain

import "time"

// Role values for users and company memberships.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleOwner  = "owner"
	RoleMember = "member"
)

// User is an authenticated principal. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
