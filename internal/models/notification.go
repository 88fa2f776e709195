package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationMessage        NotificationType = "message"
	NotificationItemSold       NotificationType = "item_sold"
	NotificationItemSaved      NotificationType = "item_saved"
	NotificationRoommateMatch  NotificationType = "roommate_match"
	NotificationReviewReceived NotificationType = "review_received"
	NotificationSystem         NotificationType = "system"
	NotificationAnnouncement   NotificationType = "announcement"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationItemSold, NotificationItemSaved,
		NotificationRoommateMatch, NotificationReviewReceived, NotificationSystem,
		NotificationAnnouncement:
		return true
	}
	return false
}

// Notification is a persisted per-user notification. A nil ReadAt means unread.
type Notification struct {
	ID        string           `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"not null;index:idx_notifications_user,priority:1" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Data      datatypes.JSON   `json:"data,omitempty"`
	ReadAt    *time.Time       `gorm:"index" json:"readAt"`
	CreatedAt time.Time        `gorm:"index:idx_notifications_user,priority:2" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
