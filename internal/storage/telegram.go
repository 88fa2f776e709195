package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func linkCodeKey(code string) string { return "telegram:link:" + code }

// CreateTelegramLinkCode stores a one-time code that resolves to userID until ttl passes.
func (s *Service) CreateTelegramLinkCode(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if err := s.Redis.Set(ctx, linkCodeKey(code), userID, ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// ConsumeTelegramLinkCode resolves and deletes a link code. Unknown or expired codes yield
// ErrNotFound.
func (s *Service) ConsumeTelegramLinkCode(ctx context.Context, code string) (string, error) {
	userID, err := s.Redis.GetDel(ctx, linkCodeKey(strings.ToUpper(strings.TrimSpace(code)))).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return userID, err
}
