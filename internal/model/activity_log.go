package model

import "time"

// ActivityLog is an append-only audit record. The application only ever
// inserts and reads these rows, never updates or deletes them.
type ActivityLog struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"index"`
	Action    string    `gorm:"size:32;not null"`
	Details   string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"not null;index"`
}
