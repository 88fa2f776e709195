// Package storagetest wires a storage.Service to an in-memory SQLite database and an
// in-process Redis for tests.
package storagetest

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated storage service. Each call gets its own database.
func New(t testing.TB) (*storage.Service, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Keep one connection so the in-memory database survives for the whole test.
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	})
	return storage.NewStorageService(db, rdb, "campuscart:test"), mr
}

// UserOption customizes a seeded user.
type UserOption func(*models.User)

func WithUniversity(id string) UserOption {
	return func(u *models.User) { u.UniversityID = &id }
}

func WithStatus(status string) UserOption {
	return func(u *models.User) { u.Status = status }
}

func WithRole(role string) UserOption {
	return func(u *models.User) { u.Role = role }
}

func WithPassword(password string) UserOption {
	return func(u *models.User) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	}
}

func WithTelegram(chatID int64) UserOption {
	return func(u *models.User) { u.TelegramChatID = &chatID }
}

func Unverified() UserOption {
	return func(u *models.User) { u.IsVerified = false }
}

// SeedUser inserts an active, verified student named first.
func SeedUser(t testing.TB, s *storage.Service, first string, opts ...UserOption) *models.User {
	t.Helper()
	u := &models.User{
		Email:        fmt.Sprintf("%s.%s@uni.edu", first, uuid.NewString()[:8]),
		PasswordHash: "x",
		FirstName:    first,
		LastName:     "Test",
		Role:         models.RoleStudent,
		IsVerified:   true,
		Status:       models.StatusActive,
		Language:     "en",
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPost inserts a roommate post owned by userID.
func SeedPost(t testing.TB, s *storage.Service, post *models.RoommatePost) *models.RoommatePost {
	t.Helper()
	if post.Status == "" {
		post.Status = models.PostStatusActive
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if err := s.DB.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}
