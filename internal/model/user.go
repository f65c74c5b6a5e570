package model

import "time"

// Roles assignable to a user account.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is a registered account. Students apply for rooms; admins manage
// allocations through the override endpoints.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:128;not null" json:"username"`
	FirstName    string    `gorm:"size:128" json:"first_name"`
	Email        string    `gorm:"size:256" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"-"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}

// IsAdmin reports whether the account may use the admin surface.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
