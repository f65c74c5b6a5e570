package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-allocation-backend/internal/model"
)

// FindActive returns the student's current allocation, treating the newest row
// (highest id) as canonical when duplicates exist. Returns nil when the
// student has no allocation.
func (s *gormStore) FindActive(ctx context.Context, studentID int64) (*model.Allocation, error) {
	var alloc model.Allocation
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id DESC").
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find allocation for student %d: %w", studentID, err)
	}
	return &alloc, nil
}

// CreateIfAbsent inserts an allocation for the student unless one already
// exists. The existence check and the insert run in the same transaction, so
// two racing requests for the same student cannot both create a row. Returns
// the canonical row and whether this call created it; an existing row is
// returned untouched.
func (s *gormStore) CreateIfAbsent(ctx context.Context, studentID, hostelID int64, roomNumber string) (*model.Allocation, bool, error) {
	var canonical model.Allocation
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockRows(tx).
			Where("student_id = ?", studentID).
			Order("id DESC").
			First(&canonical).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("fetch allocation for student %d: %w", studentID, err)
		}

		canonical = model.Allocation{
			StudentID:   studentID,
			HostelID:    hostelID,
			RoomNumber:  roomNumber,
			AllocatedOn: time.Now().UTC(),
		}
		if err := tx.Omit(clause.Associations).Create(&canonical).Error; err != nil {
			return fmt.Errorf("create allocation for student %d: %w", studentID, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &canonical, created, nil
}

// UpsertSingle makes hostelID/roomNumber the student's one allocation. An
// existing newest row is updated in place, preserving its id and timestamp for
// audit continuity, and every other row for the student is removed in the same
// transaction. Returns the canonical row and the number of rows removed.
func (s *gormStore) UpsertSingle(ctx context.Context, studentID, hostelID int64, roomNumber string) (*model.Allocation, int, error) {
	var canonical model.Allocation
	removed := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []model.Allocation
		if err := lockRows(tx).
			Where("student_id = ?", studentID).
			Order("id DESC").
			Find(&rows).Error; err != nil {
			return fmt.Errorf("fetch allocations for student %d: %w", studentID, err)
		}

		if len(rows) == 0 {
			canonical = model.Allocation{
				StudentID:   studentID,
				HostelID:    hostelID,
				RoomNumber:  roomNumber,
				AllocatedOn: time.Now().UTC(),
			}
			if err := tx.Omit(clause.Associations).Create(&canonical).Error; err != nil {
				return fmt.Errorf("create allocation for student %d: %w", studentID, err)
			}
			return nil
		}

		canonical = rows[0]
		canonical.HostelID = hostelID
		canonical.RoomNumber = roomNumber
		if err := tx.Model(&model.Allocation{}).
			Where("id = ?", canonical.ID).
			Updates(map[string]any{"hostel_id": hostelID, "room_number": roomNumber}).Error; err != nil {
			return fmt.Errorf("update allocation %d: %w", canonical.ID, err)
		}

		if len(rows) > 1 {
			ids := make([]int64, 0, len(rows)-1)
			for _, row := range rows[1:] {
				ids = append(ids, row.ID)
			}
			if err := tx.Delete(&model.Allocation{}, ids).Error; err != nil {
				return fmt.Errorf("remove duplicate allocations for student %d: %w", studentID, err)
			}
			removed = len(ids)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &canonical, removed, nil
}

// DeleteForStudent removes every allocation row for the student and returns
// the removed rows exactly once, so the caller can credit each row's hostel
// back without double releasing.
func (s *gormStore) DeleteForStudent(ctx context.Context, studentID int64) ([]model.Allocation, error) {
	var rows []model.Allocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRows(tx).
			Where("student_id = ?", studentID).
			Order("id DESC").
			Find(&rows).Error; err != nil {
			return fmt.Errorf("fetch allocations for student %d: %w", studentID, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.Allocation{}).Error; err != nil {
			return fmt.Errorf("delete allocations for student %d: %w", studentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateRoomNumber changes the room label of one allocation in place and
// removes any duplicate rows found for the same student. Returns the updated
// row, the previous label, and the duplicate count for audit logging.
func (s *gormStore) UpdateRoomNumber(ctx context.Context, allocationID int64, roomNumber string) (*model.Allocation, string, int, error) {
	var canonical model.Allocation
	var before string
	removed := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockRows(tx).First(&canonical, allocationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAllocationNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch allocation %d: %w", allocationID, err)
		}

		before = canonical.RoomNumber
		canonical.RoomNumber = roomNumber
		if err := tx.Model(&model.Allocation{}).
			Where("id = ?", allocationID).
			Update("room_number", roomNumber).Error; err != nil {
			return fmt.Errorf("update allocation %d: %w", allocationID, err)
		}

		res := tx.Where("student_id = ? AND id <> ?", canonical.StudentID, allocationID).
			Delete(&model.Allocation{})
		if res.Error != nil {
			return fmt.Errorf("remove duplicate allocations for student %d: %w", canonical.StudentID, res.Error)
		}
		removed = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return nil, "", 0, err
	}
	return &canonical, before, removed, nil
}

// RoomNumbers returns the room labels currently assigned within a hostel.
func (s *gormStore) RoomNumbers(ctx context.Context, hostelID int64) ([]string, error) {
	var labels []string
	if err := s.db.WithContext(ctx).
		Model(&model.Allocation{}).
		Where("hostel_id = ?", hostelID).
		Pluck("room_number", &labels).Error; err != nil {
		return nil, fmt.Errorf("fetch room numbers for hostel %d: %w", hostelID, err)
	}
	return labels, nil
}
