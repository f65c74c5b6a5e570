package model

import "time"

// Session is a server-side login session referenced by the session cookie.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    int64     `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
