package model

import (
	"slices"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash *string   `db:"password_hash" json:"-"` // Nullable for externally provisioned users
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Loaded from user_roles, not a column
	Roles []string `db:"-" json:"roles"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// PrimaryRole is the role embedded in issued tokens. Users without an
// explicit role entry default to USER.
func (u *User) PrimaryRole() string {
	if u.HasRole(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}
