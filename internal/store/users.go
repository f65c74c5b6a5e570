package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// GetUser fetches a user by id.
func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user %d: %w", id, err)
	}
	return &user, nil
}

// DeleteUser removes the user row. Allocation cleanup and room release happen
// before this call; sessions and push subscriptions cascade with the user.
func (s *gormStore) DeleteUser(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.PushSubscription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
