package models

import "time"

// UserRole represents the closed set of staff roles.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleClinician    UserRole = "CLINICIAN"
	RoleTrainee      UserRole = "TRAINEE"
	RoleReceptionist UserRole = "RECEPTIONIST"
)

// KnownRole reports whether the role is part of the closed enumeration.
func KnownRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleClinician, RoleTrainee, RoleReceptionist:
		return true
	}
	return false
}

// User represents a staff account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
