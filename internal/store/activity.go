package store

import (
	"context"
	"fmt"

	"hostel-allocation-backend/internal/model"
)

// AppendActivity records an audit entry. The log is write-only from the
// application's point of view.
func (s *gormStore) AppendActivity(ctx context.Context, userID int64, action, details string) error {
	entry := model.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}
