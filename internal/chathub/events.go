package chathub

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Inbound event names (client -> server).
const (
	EventJoinConversation         = "join_conversation"
	EventSendMessage              = "send_message"
	EventTypingStart              = "typing_start"
	EventTypingStop               = "typing_stop"
	EventMarkMessagesRead         = "mark_messages_read"
	EventLeaveConversation        = "leave_conversation"
	EventSubscribeNotifications   = "subscribe_notifications"
	EventGetUnreadNotifications   = "get_unread_notifications"
	EventGetNotifications         = "get_notifications"
	EventMarkNotificationRead     = "mark_notification_read"
	EventMarkAllNotificationsRead = "mark_all_notifications_read"
)

var (
	ErrInvalidFrame   = errors.New("chathub: malformed frame")
	ErrUnknownEvent   = errors.New("chathub: unknown event")
	ErrInvalidPayload = errors.New("chathub: invalid event payload")
	ErrContentEmpty   = errors.New("chathub: message content is empty")
	ErrContentTooLong = errors.New("chathub: message content is too long")
)

type JoinConversation struct {
	RecipientID string  `json:"recipientId" validate:"required"`
	ItemID      *string `json:"itemId,omitempty"`
}

type SendMessage struct {
	RecipientID    string  `json:"recipientId" validate:"required"`
	Content        string  `json:"content"`
	ItemID         *string `json:"itemId,omitempty"`
	RoommatePostID *string `json:"roommatePostId,omitempty"`
}

// Typing covers both typing_start and typing_stop.
type Typing struct {
	RecipientID string `json:"recipientId" validate:"required"`
	IsTyping    bool   `json:"-"`
}

type MarkMessagesRead struct {
	SenderID string `json:"senderId" validate:"required"`
}

type LeaveConversation struct {
	RecipientID string `json:"recipientId" validate:"required"`
}

type SubscribeNotifications struct{}

type GetUnreadNotifications struct{}

type GetNotifications struct {
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

type MarkNotificationRead struct {
	NotificationID string `json:"notificationId" validate:"required"`
}

type MarkAllNotificationsRead struct{}

var inboundEvents = map[string]func() any{
	EventJoinConversation:         func() any { return &JoinConversation{} },
	EventSendMessage:              func() any { return &SendMessage{} },
	EventTypingStart:              func() any { return &Typing{IsTyping: true} },
	EventTypingStop:               func() any { return &Typing{} },
	EventMarkMessagesRead:         func() any { return &MarkMessagesRead{} },
	EventLeaveConversation:        func() any { return &LeaveConversation{} },
	EventSubscribeNotifications:   func() any { return &SubscribeNotifications{} },
	EventGetUnreadNotifications:   func() any { return &GetUnreadNotifications{} },
	EventGetNotifications:         func() any { return &GetNotifications{} },
	EventMarkNotificationRead:     func() any { return &MarkNotificationRead{} },
	EventMarkAllNotificationsRead: func() any { return &MarkAllNotificationsRead{} },
}

// ParseFrame decodes a raw websocket text frame into its envelope.
func ParseFrame(raw []byte) (models.Frame, error) {
	var f models.Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if f.Event == "" {
		return f, fmt.Errorf("%w: missing event name", ErrInvalidFrame)
	}
	return f, nil
}

// DecodeEvent turns a frame into the typed payload of its event and validates it. The
// result is always a pointer to one of the inbound payload types.
func DecodeEvent(v *validator.Validate, f models.Frame) (any, error) {
	newPayload, ok := inboundEvents[f.Event]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
	}
	p := newPayload()
	if len(f.Data) > 0 && string(f.Data) != "null" {
		if err := json.Unmarshal(f.Data, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	if err := v.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// NormalizeContent trims message content and enforces the length bounds.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// Preview returns at most the first PreviewLength characters of content.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= config.PreviewLength {
		return content
	}
	return string([]rune(content)[:config.PreviewLength])
}
