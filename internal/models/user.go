package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a profile role within an organization.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User represents an account identity. Authentication state is carried by JWT;
// authorization attributes live on the Profile.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

// Profile carries the role and tenant binding of a user. OrganizationID is nil
// until the user is assigned to an organization; it is set by organization
// registration or by an admin, never by an authorization check.
type Profile struct {
	UserID         uuid.UUID  `json:"user_id"`
	Role           Role       `json:"role"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role. Comparison is
// exact-case: "Admin" is not admin.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
