package chathub

import (
	"campuscart/backend/internal/models"
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// listen forwards bus messages into the hub loop. It stops when the subscription closes.
func (m *ManagerService) listen(ctx context.Context, ch <-chan *redis.Message) {
	for msg := range ch {
		var ev models.BusEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			m.log.Error("decode bus event", zap.Error(err))
			continue
		}

		select {
		case m.busCh <- ev:
		case <-ctx.Done():
			return
		}
	}
}
