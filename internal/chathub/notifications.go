package chathub

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"context"
)

// subscribeNotifications is an acknowledgement: every connection already listens on its
// personal channel from the moment it registers.
func (m *ManagerService) subscribeNotifications(ctx context.Context, c Client, replyTo string) error {
	channel := rooms.Personal(c.GetUserID())
	m.Join(c, channel)
	unread, err := m.Inbox.UnreadCount(ctx, c.GetUserID())
	if err != nil {
		return err
	}
	m.reply(c, models.EventNotificationsSubscribed, replyTo, models.NotificationsSubscribedPayload{
		Channel: channel,
		Unread:  unread,
	})
	return nil
}

func (m *ManagerService) unreadCounts(ctx context.Context, c Client, replyTo string) error {
	notifications, err := m.Inbox.UnreadCount(ctx, c.GetUserID())
	if err != nil {
		return err
	}
	messages, bySender, err := m.Storage.UnreadMessageCounts(ctx, c.GetUserID())
	if err != nil {
		return err
	}
	m.reply(c, models.EventUnreadCounts, replyTo, models.UnreadCountsPayload{
		Notifications: notifications,
		Messages:      messages,
		BySender:      bySender,
	})
	return nil
}

func (m *ManagerService) notificationsPage(ctx context.Context, c Client, replyTo string, e *GetNotifications) error {
	page, err := m.Inbox.List(ctx, c.GetUserID(), e.Page, e.Limit)
	if err != nil {
		return err
	}
	m.reply(c, models.EventNotificationsPage, replyTo, page)
	return nil
}

func (m *ManagerService) markNotificationRead(ctx context.Context, c Client, replyTo string, e *MarkNotificationRead) error {
	res, err := m.Inbox.MarkRead(ctx, c.GetUserID(), e.NotificationID)
	if err != nil {
		return err
	}
	m.reply(c, models.EventNotificationsRead, replyTo, res)
	return nil
}

func (m *ManagerService) markAllNotificationsRead(ctx context.Context, c Client, replyTo string) error {
	res, err := m.Inbox.MarkAllRead(ctx, c.GetUserID())
	if err != nil {
		return err
	}
	m.reply(c, models.EventNotificationsRead, replyTo, res)
	return nil
}
