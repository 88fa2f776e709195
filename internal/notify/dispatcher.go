// Package notify persists per-user notifications and fans them out to live connections
// and optional push sinks.
package notify

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"campuscart/backend/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var ErrInvalidRequest = errors.New("notify: invalid notification")

// Store is the persistence and bus surface the dispatcher needs.
type Store interface {
	storage.Notifications
	storage.Bus
	ActiveUserIDsByUniversity(ctx context.Context, universityID string) ([]string, error)
}

// Pusher is an out-of-band delivery sink (Telegram, mobile push) called for every persisted
// notification. Sink errors are logged and never fail the delivery.
type Pusher interface {
	Push(ctx context.Context, n *models.Notification) error
}

// Request describes a notification to create.
type Request struct {
	Type    models.NotificationType `json:"type" validate:"required"`
	Title   string                  `json:"title" validate:"required,max=255"`
	Message string                  `json:"message" validate:"max=2000"`
	Data    json.RawMessage         `json:"data,omitempty"`
}

// BatchResult reports a multi-recipient delivery. A failure for one recipient does not stop
// the others.
type BatchResult struct {
	Delivered int              `json:"delivered"`
	Failed    map[string]error `json:"-"`
}

type Dispatcher struct {
	store    Store
	log      *zap.Logger
	validate *validator.Validate
	pushers  []Pusher
	now      func() time.Time
}

func NewDispatcher(store Store, log *zap.Logger, pushers ...Pusher) *Dispatcher {
	return &Dispatcher{
		store:    store,
		log:      log.Named("notify"),
		validate: validator.New(),
		pushers:  pushers,
		now:      time.Now,
	}
}

// AddPusher registers a push sink. It is not safe to call once deliveries have started.
func (d *Dispatcher) AddPusher(p Pusher) {
	d.pushers = append(d.pushers, p)
}

func (d *Dispatcher) check(req Request) error {
	if err := d.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, req.Type)
	}
	if len(req.Data) > 0 && !json.Valid(req.Data) {
		return fmt.Errorf("%w: data is not valid JSON", ErrInvalidRequest)
	}
	return nil
}

// Deliver persists a notification for userID and publishes it to the user's personal
// channel. Publishing is best effort: a user who is offline reads it from history later.
func (d *Dispatcher) Deliver(ctx context.Context, userID string, req Request) (*models.Notification, error) {
	if err := d.check(req); err != nil {
		return nil, err
	}
	return d.deliver(ctx, userID, req)
}

func (d *Dispatcher) deliver(ctx context.Context, userID string, req Request) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		CreatedAt: d.now(),
	}
	if len(req.Data) > 0 {
		n.Data = datatypes.JSON(req.Data)
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification for %s: %w", userID, err)
	}

	d.publish(ctx, rooms.Personal(userID), models.EventNotification, n)

	for _, p := range d.pushers {
		if err := p.Push(ctx, n); err != nil {
			d.log.Warn("push sink failed",
				zap.String("user_id", userID),
				zap.String("notification_id", n.ID),
				zap.Error(err))
		}
	}
	return n, nil
}

// DeliverToMany delivers one notification per recipient, in order.
func (d *Dispatcher) DeliverToMany(ctx context.Context, userIDs []string, req Request) (BatchResult, error) {
	res := BatchResult{Failed: make(map[string]error)}
	if err := d.check(req); err != nil {
		return res, err
	}
	for _, id := range userIDs {
		if _, err := d.deliver(ctx, id, req); err != nil {
			d.log.Error("notification delivery failed", zap.String("user_id", id), zap.Error(err))
			res.Failed[id] = err
			continue
		}
		res.Delivered++
	}
	return res, nil
}

// DeliverToUniversity notifies every active user of a university.
func (d *Dispatcher) DeliverToUniversity(ctx context.Context, universityID string, req Request) (BatchResult, error) {
	if err := d.check(req); err != nil {
		return BatchResult{}, err
	}
	ids, err := d.store.ActiveUserIDsByUniversity(ctx, universityID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load university %s members: %w", universityID, err)
	}
	return d.DeliverToMany(ctx, ids, req)
}

// DeliverToAll broadcasts to every live connection. Nothing is persisted, so the publish
// error is the only signal of failure and is returned.
func (d *Dispatcher) DeliverToAll(ctx context.Context, req Request) error {
	if err := d.check(req); err != nil {
		return err
	}
	payload := models.BroadcastPayload{
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: d.now(),
	}
	ev, err := busEvent(rooms.Global, models.EventBroadcastNotification, payload)
	if err != nil {
		return err
	}
	return d.store.PublishEvent(ctx, ev)
}

func (d *Dispatcher) publish(ctx context.Context, channel, event string, payload any) {
	ev, err := busEvent(channel, event, payload)
	if err == nil {
		err = d.store.PublishEvent(ctx, ev)
	}
	if err != nil {
		d.log.Warn("publish failed", zap.String("channel", channel), zap.String("event", event), zap.Error(err))
	}
}

func busEvent(channel, event string, payload any) (models.BusEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return models.BusEvent{}, err
	}
	return models.BusEvent{Channel: channel, Event: event, Data: data}, nil
}

// PageBounds normalizes a 1-based page and a page size.
func PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultPageSize
	}
	return page, min(limit, config.MaxPageSize)
}

// List returns one page of a user's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, userID string, page, limit int) (models.NotificationsPagePayload, error) {
	page, limit = PageBounds(page, limit)
	items, total, err := d.store.ListNotifications(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return models.NotificationsPagePayload{}, err
	}
	return models.NotificationsPagePayload{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: int64(page*limit) < total,
	}, nil
}

func (d *Dispatcher) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return d.store.CountUnreadNotifications(ctx, userID)
}

// MarkRead marks one of the user's notifications read. It returns storage.ErrNotFound when
// the notification does not exist or belongs to someone else.
func (d *Dispatcher) MarkRead(ctx context.Context, userID, notificationID string) (models.NotificationsReadPayload, error) {
	updated, err := d.store.MarkNotificationRead(ctx, userID, notificationID, d.now())
	if err != nil {
		return models.NotificationsReadPayload{}, err
	}
	unread, err := d.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return models.NotificationsReadPayload{}, err
	}
	return models.NotificationsReadPayload{NotificationID: notificationID, Updated: updated, Unread: unread}, nil
}

func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) (models.NotificationsReadPayload, error) {
	updated, err := d.store.MarkAllNotificationsRead(ctx, userID, d.now())
	if err != nil {
		return models.NotificationsReadPayload{}, err
	}
	unread, err := d.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return models.NotificationsReadPayload{}, err
	}
	return models.NotificationsReadPayload{Updated: updated, Unread: unread}, nil
}

func (d *Dispatcher) Delete(ctx context.Context, userID, notificationID string) error {
	n, err := d.store.DeleteNotification(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClearRead deletes every read notification of the user.
func (d *Dispatcher) ClearRead(ctx context.Context, userID string) (int64, error) {
	return d.store.DeleteReadNotifications(ctx, userID)
}
