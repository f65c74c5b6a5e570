package model

import "time"

// Hostel represents a hostel building. Capacity is configuration and never
// changes through the allocation flow; ReservedCount is the live counter the
// capacity ledger moves, kept within 0..Capacity by conditional updates.
type Hostel struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"uniqueIndex;size:128;not null"`
	Location      string    `gorm:"size:256"`
	Capacity      int       `gorm:"not null"`
	ReservedCount int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// Remaining returns the number of rooms still available for reservation.
func (h *Hostel) Remaining() int {
	return h.Capacity - h.ReservedCount
}
