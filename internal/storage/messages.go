package storage

import (
	"campuscart/backend/internal/models"
	"context"
	"time"
)

func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.DB.WithContext(ctx).Create(msg).Error
}

// RecentMessages returns up to limit of the latest messages exchanged between two users,
// ordered oldest to newest.
func (s *Service) RecentMessages(ctx context.Context, userA, userB string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MarkConversationRead stamps every unread message from senderID to recipientID in a single
// statement and returns how many rows changed.
func (s *Service) MarkConversationRead(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND read_at IS NULL", senderID, recipientID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

// UnreadMessageCounts returns the total unread messages for a recipient and the breakdown
// per sender.
func (s *Service) UnreadMessageCounts(ctx context.Context, recipientID string) (int64, map[string]int64, error) {
	var rows []struct {
		SenderID string
		Count    int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	var total int64
	bySender := make(map[string]int64, len(rows))
	for _, r := range rows {
		bySender[r.SenderID] = r.Count
		total += r.Count
	}
	return total, bySender, nil
}
