package storage

import (
	"campuscart/backend/internal/models"
	"context"
	"time"
)

func (s *Service) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

// ListNotifications returns one page of a user's notifications, newest first, and the total.
func (s *Service) ListNotifications(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Notification, 0, limit)
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&n).Error
	return n, err
}

// MarkNotificationRead is scoped to the owner, so a user cannot touch another user's row.
// Already-read rows keep their original timestamp.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string, at time.Time) (int64, error) {
	var n models.Notification
	if err := s.DB.WithContext(ctx).Select("id").Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return 0, notFound(err)
	}
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (s *Service) DeleteNotification(ctx context.Context, userID, id string) (int64, error) {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// DeleteReadNotifications implements "clear read".
func (s *Service) DeleteReadNotifications(ctx context.Context, userID string) (int64, error) {
	res := s.DB.WithContext(ctx).Where("user_id = ? AND read_at IS NOT NULL", userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
