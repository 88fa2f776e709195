package chathub

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"context"
	"fmt"

	"go.uber.org/zap"
)

func (m *ManagerService) joinConversation(ctx context.Context, c Client, replyTo string, e *JoinConversation) error {
	me := c.Identity()
	peer, err := m.Storage.GetUserByID(ctx, e.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", e.RecipientID, err)
	}

	channel := rooms.Conversation(me.UserID, peer.ID)
	if m.Join(c, channel) {
		m.enterPresence(ctx, channel, me.UserID)
		m.publish(ctx, channel, c.GetID(), models.EventUserJoinedConversation, models.PresencePayload{
			ConversationID: channel,
			UserID:         me.UserID,
			UserName:       me.Name,
			Timestamp:      m.now(),
		})
	}

	msgs, err := m.Storage.RecentMessages(ctx, me.UserID, peer.ID, config.HistoryLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	names := map[string]string{me.UserID: me.Name, peer.ID: peer.DisplayName()}
	history := make([]models.MessagePayload, 0, len(msgs))
	for i := range msgs {
		history = append(history, models.NewMessagePayload(&msgs[i], channel, names[msgs[i].SenderID]))
	}

	m.reply(c, models.EventConversationHistory, replyTo, models.ConversationHistoryPayload{
		ConversationID: channel,
		RecipientID:    peer.ID,
		ItemID:         e.ItemID,
		Messages:       history,
	})
	return nil
}

// sendMessage persists first and only then fans out, so nothing is delivered for a message
// that was not stored.
func (m *ManagerService) sendMessage(ctx context.Context, c Client, replyTo string, e *SendMessage) error {
	content, err := NormalizeContent(e.Content)
	if err != nil {
		return err
	}

	me := c.Identity()
	msg := &models.Message{
		SenderID:       me.UserID,
		RecipientID:    e.RecipientID,
		Content:        content,
		ItemID:         e.ItemID,
		RoommatePostID: e.RoommatePostID,
		CreatedAt:      m.now(),
	}
	if err := m.Storage.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	channel := rooms.Conversation(me.UserID, e.RecipientID)
	m.touchPresence(ctx, c, channel)
	m.publish(ctx, channel, "", models.EventReceiveMessage, models.NewMessagePayload(msg, channel, me.Name))
	m.reply(c, models.EventMessageSent, replyTo, models.MessageSentPayload{
		MessageID:      msg.ID,
		ConversationID: channel,
		CreatedAt:      msg.CreatedAt,
	})

	present, err := m.Storage.IsPresent(ctx, channel, e.RecipientID)
	if err != nil {
		m.log.Warn("presence lookup failed", zap.String("channel", channel), zap.Error(err))
	}
	if !present {
		m.publish(ctx, rooms.Personal(e.RecipientID), "", models.EventNewMessageNotification, models.NewMessageNotificationPayload{
			MessageID:      msg.ID,
			ConversationID: channel,
			SenderID:       me.UserID,
			SenderName:     me.Name,
			Preview:        Preview(content),
			ItemID:         msg.ItemID,
			CreatedAt:      msg.CreatedAt,
		})
	}
	return nil
}

func (m *ManagerService) typing(ctx context.Context, c Client, e *Typing) {
	me := c.Identity()
	channel := rooms.Conversation(me.UserID, e.RecipientID)
	m.touchPresence(ctx, c, channel)
	m.publish(ctx, channel, c.GetID(), models.EventUserTyping, models.TypingPayload{
		ConversationID: channel,
		UserID:         me.UserID,
		UserName:       me.Name,
		IsTyping:       e.IsTyping,
	})
}

// markMessagesRead stamps everything SenderID sent to this user. The sender only hears about
// it when something actually changed.
func (m *ManagerService) markMessagesRead(ctx context.Context, c Client, e *MarkMessagesRead) error {
	me := c.Identity()
	at := m.now()
	n, err := m.Storage.MarkConversationRead(ctx, e.SenderID, me.UserID, at)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return nil
	}
	m.publish(ctx, rooms.Personal(e.SenderID), "", models.EventMessagesRead, models.MessagesReadPayload{
		ConversationID: rooms.Conversation(me.UserID, e.SenderID),
		ReaderID:       me.UserID,
		Count:          n,
		ReadAt:         at,
	})
	return nil
}

func (m *ManagerService) leaveConversation(ctx context.Context, c Client, e *LeaveConversation) {
	me := c.Identity()
	channel := rooms.Conversation(me.UserID, e.RecipientID)
	if !m.Leave(c, channel) {
		return
	}
	m.releasePresence(ctx, channel, me.UserID)
	m.publish(ctx, channel, c.GetID(), models.EventUserLeftConversation, models.PresencePayload{
		ConversationID: channel,
		UserID:         me.UserID,
		UserName:       me.Name,
		Timestamp:      m.now(),
	})
}
