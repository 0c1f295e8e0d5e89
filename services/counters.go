package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	counterTypeUnreadMessages = "unread_messages"
	counterTTL                = 24 * time.Hour
)

// CounterCache - read-through кэш счетчиков непрочитанных сообщений в Redis.
// Источник истины - таблица messages; кэш всегда можно пересчитать, поэтому
// при изменениях ключ просто инвалидируется. Ошибки Redis не фатальны:
// промах кэша означает подсчет по базе.
type CounterCache struct {
	client *redis.Client
}

func NewCounterCache(client *redis.Client) *CounterCache {
	return &CounterCache{client: client}
}

func (cc *CounterCache) counterKey(userID int64) string {
	return fmt.Sprintf("counter:%d:%s", userID, counterTypeUnreadMessages)
}

// GetUnread возвращает закэшированное число непрочитанных и признак попадания
func (cc *CounterCache) GetUnread(ctx context.Context, userID int64) (int64, bool) {
	if cc == nil || cc.client == nil {
		return 0, false
	}
	data, err := cc.client.Get(ctx, cc.counterKey(userID)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Printf("counter cache read error for user %d: %v", userID, err)
		return 0, false
	}
	count, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		log.Printf("counter cache has bad value for user %d: %q", userID, data)
		return 0, false
	}
	return count, true
}

// SetUnread сохраняет вычисленное значение счетчика с TTL
func (cc *CounterCache) SetUnread(ctx context.Context, userID, count int64) {
	if cc == nil || cc.client == nil {
		return
	}
	if err := cc.client.Set(ctx, cc.counterKey(userID), count, counterTTL).Err(); err != nil {
		log.Printf("counter cache write error for user %d: %v", userID, err)
	}
}

// InvalidateUnread сбрасывает счетчик пользователя; следующий ListSummaries
// пересчитает его по базе
func (cc *CounterCache) InvalidateUnread(ctx context.Context, userID int64) {
	if cc == nil || cc.client == nil {
		return
	}
	if err := cc.client.Del(ctx, cc.counterKey(userID)).Err(); err != nil {
		log.Printf("counter cache invalidate error for user %d: %v", userID, err)
	}
}
