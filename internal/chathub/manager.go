// Package chathub is the realtime hub: it owns live connections, their channel
// memberships, and the handlers for every inbound websocket event.
package chathub

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/localization"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"campuscart/backend/internal/storage"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Inbox is the notification history surface used by the notification events.
// *notify.Dispatcher implements it.
type Inbox interface {
	List(ctx context.Context, userID string, page, limit int) (models.NotificationsPagePayload, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) (models.NotificationsReadPayload, error)
	MarkAllRead(ctx context.Context, userID string) (models.NotificationsReadPayload, error)
}

type ManagerService struct {
	Storage   storage.Storage
	Inbox     Inbox
	Localizer *localization.Localizer

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	busCh        chan models.BusEvent
	ready        chan struct{}
	done         chan struct{}

	mu      sync.RWMutex
	clients map[string]Client            // connection id -> client
	rooms   map[string]map[string]Client // channel -> connection id -> client
	joined  map[string]map[string]bool   // connection id -> channels

	cfg      config.RealtimeConfig
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewManagerService(s storage.Storage, inbox Inbox, loc *localization.Localizer, cfg config.RealtimeConfig, log *zap.Logger) *ManagerService {
	return &ManagerService{
		Storage:      s,
		Inbox:        inbox,
		Localizer:    loc,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		busCh:        make(chan models.BusEvent, 256),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
		clients:      make(map[string]Client),
		rooms:        make(map[string]map[string]Client),
		joined:       make(map[string]map[string]bool),
		cfg:          cfg,
		log:          log.Named("chathub"),
		validate:     validator.New(),
		now:          time.Now,
	}
}

// Ready is closed once the hub is subscribed to the bus.
func (m *ManagerService) Ready() <-chan struct{} { return m.ready }

// Done is closed when Run returns.
func (m *ManagerService) Done() <-chan struct{} { return m.done }

// Run subscribes to the bus and serves registrations, unregistrations and bus deliveries
// until ctx is cancelled.
func (m *ManagerService) Run(ctx context.Context) error {
	defer close(m.done)

	pubsub, err := m.Storage.SubscribeEvents(ctx)
	if err != nil {
		return err
	}
	defer pubsub.Close()
	go m.listen(ctx, pubsub.Channel())
	close(m.ready)

	for {
		select {
		case c := <-m.RegisterCh:
			m.register(c)
		case c := <-m.UnregisterCh:
			m.unregister(c)
		case ev := <-m.busCh:
			m.deliver(ev)
		case <-ctx.Done():
			m.shutdown()
			return nil
		}
	}
}

// Unregister asks the hub to drop c. It is safe to call after Run has returned.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

func (m *ManagerService) register(c Client) {
	m.mu.Lock()
	m.clients[c.GetID()] = c
	m.mu.Unlock()

	user := c.Identity()
	m.Join(c, rooms.Personal(user.UserID))
	if user.UniversityID != "" {
		m.Join(c, rooms.University(user.UniversityID))
	}
	m.Join(c, rooms.Global)

	m.reply(c, models.EventConnected, "", models.ConnectedPayload{
		ConnectionID: c.GetID(),
		User:         user,
		Timestamp:    m.now(),
	})
	m.log.Info("client connected", zap.String("user_id", user.UserID), zap.String("conn_id", c.GetID()))
}

func (m *ManagerService) unregister(c Client) {
	id := c.GetID()

	m.mu.Lock()
	if _, ok := m.clients[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, id)
	channels := m.joined[id]
	delete(m.joined, id)
	for ch := range channels {
		m.removeFromRoom(ch, id)
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), config.HandlerTimeout)
	defer cancel()
	for ch := range channels {
		if rooms.IsConversation(ch) {
			m.releasePresence(ctx, ch, c.GetUserID())
		}
	}

	c.Close()
	m.log.Info("client disconnected", zap.String("user_id", c.GetUserID()), zap.String("conn_id", id))
}

func (m *ManagerService) shutdown() {
	m.mu.RLock()
	clients := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		m.unregister(c)
	}
}

// Join adds c to channel and reports whether it was not a member before.
func (m *ManagerService) Join(c Client, channel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := c.GetID()
	if m.joined[id][channel] {
		return false
	}
	if m.joined[id] == nil {
		m.joined[id] = make(map[string]bool)
	}
	m.joined[id][channel] = true
	if m.rooms[channel] == nil {
		m.rooms[channel] = make(map[string]Client)
	}
	m.rooms[channel][id] = c
	return true
}

// Leave removes c from channel and reports whether it was a member.
func (m *ManagerService) Leave(c Client, channel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := c.GetID()
	if !m.joined[id][channel] {
		return false
	}
	delete(m.joined[id], channel)
	m.removeFromRoom(channel, id)
	return true
}

// joinedTo reports whether c is a member of channel.
func (m *ManagerService) joinedTo(c Client, channel string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.joined[c.GetID()][channel]
}

// removeFromRoom expects m.mu to be held.
func (m *ManagerService) removeFromRoom(channel, id string) {
	delete(m.rooms[channel], id)
	if len(m.rooms[channel]) == 0 {
		delete(m.rooms, channel)
	}
}

// RoomSize returns the number of local connections joined to channel.
func (m *ManagerService) RoomSize(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[channel])
}

func (m *ManagerService) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// deliver fans a bus event out to the local members of its channel. A client that cannot
// keep up is dropped rather than allowed to stall the hub.
func (m *ManagerService) deliver(ev models.BusEvent) {
	frame, err := json.Marshal(models.Frame{Event: ev.Event, Data: ev.Data})
	if err != nil {
		m.log.Error("encode frame", zap.String("event", ev.Event), zap.Error(err))
		return
	}

	m.mu.RLock()
	targets := make([]Client, 0, len(m.rooms[ev.Channel]))
	for id, c := range m.rooms[ev.Channel] {
		if id != ev.Except {
			targets = append(targets, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range targets {
		if !c.Send(frame) {
			m.log.Warn("dropping slow client", zap.String("conn_id", c.GetID()), zap.String("user_id", c.GetUserID()))
			m.unregister(c)
		}
	}
}

// publish puts an event on the bus. Failures are logged; delivery is best effort.
func (m *ManagerService) publish(ctx context.Context, channel, except, event string, payload any) {
	data, err := json.Marshal(payload)
	if err == nil {
		err = m.Storage.PublishEvent(ctx, models.BusEvent{Channel: channel, Except: except, Event: event, Data: data})
	}
	if err != nil {
		m.log.Warn("publish failed", zap.String("channel", channel), zap.String("event", event), zap.Error(err))
	}
}

// reply sends an event straight to one connection, bypassing the bus.
func (m *ManagerService) reply(c Client, event, replyTo string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.log.Error("encode payload", zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(models.Frame{Event: event, Reply: replyTo, Data: data})
	if err != nil {
		m.log.Error("encode frame", zap.String("event", event), zap.Error(err))
		return
	}
	if !c.Send(frame) {
		m.log.Warn("reply dropped", zap.String("conn_id", c.GetID()), zap.String("event", event))
	}
}

func (m *ManagerService) enterPresence(ctx context.Context, channel, userID string) {
	if err := m.Storage.EnterConversation(ctx, channel, userID); err != nil {
		m.log.Warn("presence enter failed", zap.String("channel", channel), zap.Error(err))
	}
}

// touchPresence keeps the conversation presence of an active member from expiring.
func (m *ManagerService) touchPresence(ctx context.Context, c Client, channel string) {
	if !m.joinedTo(c, channel) {
		return
	}
	if err := m.Storage.RefreshPresence(ctx, channel); err != nil {
		m.log.Warn("presence refresh failed", zap.String("channel", channel), zap.Error(err))
	}
}

func (m *ManagerService) releasePresence(ctx context.Context, channel, userID string) {
	if err := m.Storage.LeaveConversation(ctx, channel, userID); err != nil {
		m.log.Warn("presence release failed", zap.String("channel", channel), zap.Error(err))
	}
}
