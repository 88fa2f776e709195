package chathub

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"errors"

	"go.uber.org/zap"
)

// Error codes carried by the error event.
const (
	CodeInvalidFrame   = "INVALID_FRAME"
	CodeUnknownEvent   = "UNKNOWN_EVENT"
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeContentEmpty   = "CONTENT_EMPTY"
	CodeContentTooLong = "CONTENT_TOO_LONG"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL"
)

// HandleInbound processes one raw frame from c. Every failure is reported to c as an error
// event; the connection stays open.
func (m *ManagerService) HandleInbound(c Client, raw []byte) {
	f, err := ParseFrame(raw)
	if err != nil {
		m.fail(c, f, err)
		return
	}
	ev, err := DecodeEvent(m.validate, f)
	if err != nil {
		m.fail(c, f, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.HandlerTimeout)
	defer cancel()

	switch e := ev.(type) {
	case *JoinConversation:
		err = m.joinConversation(ctx, c, f.ID, e)
	case *SendMessage:
		err = m.sendMessage(ctx, c, f.ID, e)
	case *Typing:
		m.typing(ctx, c, e)
	case *MarkMessagesRead:
		err = m.markMessagesRead(ctx, c, e)
	case *LeaveConversation:
		m.leaveConversation(ctx, c, e)
	case *SubscribeNotifications:
		err = m.subscribeNotifications(ctx, c, f.ID)
	case *GetUnreadNotifications:
		err = m.unreadCounts(ctx, c, f.ID)
	case *GetNotifications:
		err = m.notificationsPage(ctx, c, f.ID, e)
	case *MarkNotificationRead:
		err = m.markNotificationRead(ctx, c, f.ID, e)
	case *MarkAllNotificationsRead:
		err = m.markAllNotificationsRead(ctx, c, f.ID)
	}
	if err != nil {
		m.fail(c, f, err)
	}
}

func errorCode(err error) (code, key string) {
	switch {
	case errors.Is(err, ErrInvalidFrame):
		return CodeInvalidFrame, "error.invalid_frame"
	case errors.Is(err, ErrUnknownEvent):
		return CodeUnknownEvent, "error.unknown_event"
	case errors.Is(err, ErrInvalidPayload):
		return CodeInvalidPayload, "error.invalid_payload"
	case errors.Is(err, ErrContentEmpty):
		return CodeContentEmpty, "error.content_empty"
	case errors.Is(err, ErrContentTooLong):
		return CodeContentTooLong, "error.content_too_long"
	case errors.Is(err, storage.ErrNotFound):
		return CodeNotFound, "error.not_found"
	}
	return CodeInternal, "error.internal"
}

func (m *ManagerService) fail(c Client, f models.Frame, err error) {
	code, key := errorCode(err)
	if code == CodeInternal {
		m.log.Error("event handler failed",
			zap.String("event", f.Event),
			zap.String("user_id", c.GetUserID()),
			zap.Error(err))
	} else {
		m.log.Debug("event rejected", zap.String("event", f.Event), zap.String("code", code), zap.Error(err))
	}

	msg := key
	if m.Localizer != nil {
		msg = m.Localizer.GetString(c.Identity().Language, key)
	}
	m.reply(c, models.EventError, f.ID, models.ErrorPayload{
		Event:   f.Event,
		Code:    code,
		Message: msg,
	})
}
