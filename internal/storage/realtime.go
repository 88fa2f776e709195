package storage

import (
	"campuscart/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how long a crashed instance can leave stale presence behind.
const presenceTTL = 12 * time.Hour

func presenceKey(channel string) string { return "presence:" + channel }

// PublishEvent публікує подію в Redis Pub/Sub
func (s *Service) PublishEvent(ctx context.Context, ev models.BusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, s.Channel, payload).Err()
}

// SubscribeEvents subscribes to the realtime channel and waits for the subscription to be
// confirmed, so nothing published after it returns is missed.
func (s *Service) SubscribeEvents(ctx context.Context) (*redis.PubSub, error) {
	pubsub := s.Redis.Subscribe(ctx, s.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}

func (s *Service) EnterConversation(ctx context.Context, channel, userID string) error {
	key := presenceKey(channel)
	pipe := s.Redis.TxPipeline()
	pipe.HIncrBy(ctx, key, userID, 1)
	pipe.Expire(ctx, key, presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Service) LeaveConversation(ctx context.Context, channel, userID string) error {
	key := presenceKey(channel)
	n, err := s.Redis.HIncrBy(ctx, key, userID, -1).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return s.Redis.HDel(ctx, key, userID).Err()
	}
	return nil
}

func (s *Service) IsPresent(ctx context.Context, channel, userID string) (bool, error) {
	val, err := s.Redis.HGet(ctx, presenceKey(channel), userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, err
	}
	if n <= 0 {
		return false, nil
	}
	return true, s.RefreshPresence(ctx, channel)
}

// RefreshPresence extends the presence TTL of a conversation that is still in use. It is a
// no-op when nobody is present.
func (s *Service) RefreshPresence(ctx context.Context, channel string) error {
	return s.Redis.Expire(ctx, presenceKey(channel), presenceTTL).Err()
}
