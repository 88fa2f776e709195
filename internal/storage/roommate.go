package storage

import (
	"campuscart/backend/internal/models"
	"context"
	"time"
)

func (s *Service) GetRoommatePost(ctx context.Context, id string) (*models.RoommatePost, error) {
	var post models.RoommatePost
	if err := s.DB.WithContext(ctx).Preload("User").Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// MatchCandidates returns the candidate pool for roommate matching: active, unexpired posts
// owned by other active and verified users, newest first.
func (s *Service) MatchCandidates(ctx context.Context, excludeUserID string, now time.Time, limit int) ([]models.RoommatePost, error) {
	var posts []models.RoommatePost
	err := s.DB.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = roommate_posts.user_id").
		Where("roommate_posts.user_id <> ?", excludeUserID).
		Where("roommate_posts.status = ?", models.PostStatusActive).
		Where("(roommate_posts.expires_at IS NULL OR roommate_posts.expires_at > ?)", now).
		Where("users.status = ? AND users.is_verified = ?", models.StatusActive, true).
		Order("roommate_posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
