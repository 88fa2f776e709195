package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a persisted direct message between two users. The only mutation after insert
// is setting ReadAt.
type Message struct {
	ID string `gorm:"primaryKey" json:"id"`
	// SenderID is the author of the message.
	SenderID string `gorm:"not null;index:idx_messages_pair,priority:1" json:"senderId"`
	// RecipientID is the user the message is addressed to.
	RecipientID string `gorm:"not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1" json:"recipientId"`
	// Content is the trimmed message text.
	Content string `gorm:"type:text;not null" json:"content"`
	// ItemID links the message to a marketplace listing.
	ItemID *string `gorm:"index" json:"itemId,omitempty"`
	// RoommatePostID links the message to a roommate ad.
	RoommatePostID *string    `gorm:"index" json:"roommatePostId,omitempty"`
	ReadAt         *time.Time `gorm:"index:idx_messages_unread,priority:2" json:"readAt"`
	CreatedAt      time.Time  `gorm:"index" json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
