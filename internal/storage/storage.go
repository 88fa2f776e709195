package storage

import (
	"campuscart/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("storage: record not found")

type Users interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SetUserStatus(ctx context.Context, id, status string) error
	ActiveUserIDsByUniversity(ctx context.Context, universityID string) ([]string, error)
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	SetTelegramChatID(ctx context.Context, userID string, chatID *int64) error
	SetUserLanguage(ctx context.Context, userID, lang string) error
}

// TelegramLinks holds short-lived codes a user sends to the bot to link their chat.
type TelegramLinks interface {
	CreateTelegramLinkCode(ctx context.Context, userID string, ttl time.Duration) (string, error)
	ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error)
}

type Messages interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	RecentMessages(ctx context.Context, userA, userB string, limit int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error)
	UnreadMessageCounts(ctx context.Context, recipientID string) (int64, map[string]int64, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int64, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id string, at time.Time) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) (int64, error)
	DeleteNotification(ctx context.Context, userID, id string) (int64, error)
	DeleteReadNotifications(ctx context.Context, userID string) (int64, error)
}

type RoommatePosts interface {
	GetRoommatePost(ctx context.Context, id string) (*models.RoommatePost, error)
	MatchCandidates(ctx context.Context, excludeUserID string, now time.Time, limit int) ([]models.RoommatePost, error)
}

// Bus carries realtime events between server instances.
type Bus interface {
	PublishEvent(ctx context.Context, ev models.BusEvent) error
	SubscribeEvents(ctx context.Context) (*redis.PubSub, error)
}

// Presence tracks which users have a connection joined to a conversation channel, across
// all server instances.
type Presence interface {
	EnterConversation(ctx context.Context, channel, userID string) error
	LeaveConversation(ctx context.Context, channel, userID string) error
	IsPresent(ctx context.Context, channel, userID string) (bool, error)
	RefreshPresence(ctx context.Context, channel string) error
}

type Storage interface {
	Users
	Messages
	Notifications
	RoommatePosts
	Bus
	Presence
	TelegramLinks
	Ping(ctx context.Context) error
}

type Service struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Channel string
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, channel string) *Service {
	if channel == "" {
		channel = "campuscart:realtime"
	}
	return &Service{
		DB:      db,
		Redis:   rdb,
		Channel: channel,
	}
}

// Ping checks both backing stores.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Migrate creates or updates the tables owned by the realtime core.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
		&models.RoommatePost{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *Service) SetUserStatus(ctx context.Context, id, status string) error {
	return s.updateUser(ctx, id, "status", status)
}

// ActiveUserIDsByUniversity returns ids of active accounts enrolled at a university.
func (s *Service) ActiveUserIDsByUniversity(ctx context.Context, universityID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("university_id = ? AND status = ?", universityID, models.StatusActive).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *Service) GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SetTelegramChatID links (or, with nil, unlinks) a Telegram chat. A chat is linked to at
// most one account, so it is first detached from any other user.
func (s *Service) SetTelegramChatID(ctx context.Context, userID string, chatID *int64) error {
	if chatID != nil {
		err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("telegram_chat_id = ? AND id <> ?", *chatID, userID).
			Update("telegram_chat_id", nil).Error
		if err != nil {
			return err
		}
	}
	return s.updateUser(ctx, userID, "telegram_chat_id", chatID)
}

func (s *Service) SetUserLanguage(ctx context.Context, userID, lang string) error {
	return s.updateUser(ctx, userID, "language", lang)
}

func (s *Service) updateUser(ctx context.Context, id, column string, value any) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
