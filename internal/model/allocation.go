package model

import "time"

// Allocation ties a student to a room in a hostel. The store guarantees at
// most one row per student. There is deliberately no uniqueness constraint on
// student_id: the update flow replaces the newest row in place and removes any
// stragglers inside the same transaction.
type Allocation struct {
	ID          int64     `gorm:"primaryKey"`
	StudentID   int64     `gorm:"index;not null"`
	HostelID    int64     `gorm:"index;not null"`
	RoomNumber  string    `gorm:"size:16;not null"`
	AllocatedOn time.Time `gorm:"not null"`

	// Associations
	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Hostel  Hostel `gorm:"constraint:OnDelete:CASCADE"`
}
