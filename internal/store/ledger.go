package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// Reserve takes one room from the hostel's remaining pool. The decrement is a
// single conditional UPDATE, never a read followed by a write, so two requests
// racing for the last room cannot both succeed.
func (s *gormStore) Reserve(ctx context.Context, hostelID int64) (int, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Hostel{}).
		Where("id = ? AND reserved_count < capacity", hostelID).
		UpdateColumn("reserved_count", gorm.Expr("reserved_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("reserve hostel %d: %w", hostelID, res.Error)
	}
	if res.RowsAffected == 0 {
		// The conditional update misses both for unknown hostels and for full
		// ones; a follow-up read tells them apart.
		remaining, err := s.remaining(ctx, hostelID)
		if err != nil {
			return 0, err
		}
		return remaining, ErrHostelFull
	}
	return s.remaining(ctx, hostelID)
}

// Release credits count rooms back to the hostel. Releases are always paired
// with prior reservations, so an underflow is clamped at zero rather than
// rejected.
func (s *gormStore) Release(ctx context.Context, hostelID int64, count int) (int, error) {
	if count <= 0 {
		return s.remaining(ctx, hostelID)
	}

	res := s.db.WithContext(ctx).
		Model(&model.Hostel{}).
		Where("id = ? AND reserved_count >= ?", hostelID, count).
		UpdateColumn("reserved_count", gorm.Expr("reserved_count - ?", count))
	if res.Error != nil {
		return 0, fmt.Errorf("release hostel %d: %w", hostelID, res.Error)
	}
	if res.RowsAffected == 0 {
		res = s.db.WithContext(ctx).
			Model(&model.Hostel{}).
			Where("id = ?", hostelID).
			UpdateColumn("reserved_count", 0)
		if res.Error != nil {
			return 0, fmt.Errorf("release hostel %d: %w", hostelID, res.Error)
		}
		if res.RowsAffected == 0 {
			return 0, ErrHostelNotFound
		}
	}
	return s.remaining(ctx, hostelID)
}

func (s *gormStore) remaining(ctx context.Context, hostelID int64) (int, error) {
	var hostel model.Hostel
	err := s.db.WithContext(ctx).First(&hostel, hostelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrHostelNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("fetch hostel %d: %w", hostelID, err)
	}
	return hostel.Remaining(), nil
}
