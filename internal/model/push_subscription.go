package model

import "time"

// PushSubscription holds a browser push subscription owned by one user. The
// notification worker looks these up by user when an allocation changes.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	UserID    int64     `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE"`
}
