package models

import (
	"encoding/json"
	"time"
)

// Outbound event names (server -> client).
const (
	EventConnected               = "connected"
	EventReceiveMessage          = "receive_message"
	EventMessageSent             = "message_sent"
	EventNewMessageNotification  = "new_message_notification"
	EventUserTyping              = "user_typing"
	EventMessagesRead            = "messages_read"
	EventUserJoinedConversation  = "user_joined_conversation"
	EventUserLeftConversation    = "user_left_conversation"
	EventConversationHistory     = "conversation_history"
	EventNotification            = "notification"
	EventBroadcastNotification   = "broadcast_notification"
	EventNotificationsSubscribed = "notifications_subscribed"
	EventUnreadCounts            = "unread_counts"
	EventNotificationsPage       = "notifications_page"
	EventNotificationsRead       = "notifications_read"
	EventError                   = "error"
)

// Frame is the JSON shape of every websocket text frame in both directions.
type Frame struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Reply string          `json:"replyTo,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// BusEvent is what travels over the pub/sub bus between server instances. Channel names a
// logical room; Except, when set, is a connection id that must not receive the event.
type BusEvent struct {
	Channel string          `json:"channel"`
	Except  string          `json:"except,omitempty"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

type ConnectedPayload struct {
	ConnectionID string    `json:"connectionId"`
	User         Identity  `json:"user"`
	Timestamp    time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// MessagePayload is the delivery shape of a persisted Message.
type MessagePayload struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	SenderName     string     `json:"senderName"`
	RecipientID    string     `json:"recipientId"`
	Content        string     `json:"content"`
	ItemID         *string    `json:"itemId,omitempty"`
	RoommatePostID *string    `json:"roommatePostId,omitempty"`
	ReadAt         *time.Time `json:"readAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type MessageSentPayload struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type NewMessageNotificationPayload struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Preview        string    `json:"preview"`
	ItemID         *string   `json:"itemId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	IsTyping       bool   `json:"isTyping"`
}

type MessagesReadPayload struct {
	ConversationID string    `json:"conversationId"`
	ReaderID       string    `json:"readerId"`
	Count          int64     `json:"count"`
	ReadAt         time.Time `json:"readAt"`
}

type PresencePayload struct {
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	Timestamp      time.Time `json:"timestamp"`
}

type ConversationHistoryPayload struct {
	ConversationID string           `json:"conversationId"`
	RecipientID    string           `json:"recipientId"`
	ItemID         *string          `json:"itemId,omitempty"`
	Messages       []MessagePayload `json:"messages"`
}

type BroadcastPayload struct {
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type NotificationsSubscribedPayload struct {
	Channel string `json:"channel"`
	Unread  int64  `json:"unread"`
}

type UnreadCountsPayload struct {
	Notifications int64            `json:"notifications"`
	Messages      int64            `json:"messages"`
	BySender      map[string]int64 `json:"bySender"`
}

type NotificationsPagePayload struct {
	Items   []Notification `json:"items"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"hasMore"`
}

type NotificationsReadPayload struct {
	NotificationID string `json:"notificationId,omitempty"`
	Updated        int64  `json:"updated"`
	Unread         int64  `json:"unread"`
}

// NewMessagePayload builds the delivery shape of m.
func NewMessagePayload(m *Message, conversationID, senderName string) MessagePayload {
	return MessagePayload{
		ID:             m.ID,
		ConversationID: conversationID,
		SenderID:       m.SenderID,
		SenderName:     senderName,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		ItemID:         m.ItemID,
		RoommatePostID: m.RoommatePostID,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
