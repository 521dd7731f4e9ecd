package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nfrund/espresso/internal/config"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	driverRedis = "redis"
	// retainFactor bounds each room list to limit*retainFactor entries.
	retainFactor = 4
)

var _ domain.MessageRepository = (*RedisStore)(nil)

// RedisStore keeps each room's history in a capped Redis list, newest first.
type RedisStore struct {
	client *redis.Client
	limit  int
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, NewStoreError(driverRedis, "ping", err)
	}
	return rdb, nil
}

// NewRedisStore creates a store on a connected client.
func NewRedisStore(client *redis.Client, limit int) *RedisStore {
	return &RedisStore{client: client, limit: effectiveLimit(limit)}
}

func roomKey(roomID string) string {
	return fmt.Sprintf("espresso:room:%s:messages", roomID)
}

// SaveMessage pushes the message onto the room list and trims it.
func (s *RedisStore) SaveMessage(ctx context.Context, msg domain.NewMessage) error {
	stored := domain.StoredMessage{
		RoomID:    msg.RoomID,
		Username:  msg.Username,
		Text:      msg.Text,
		Timestamp: msg.Timestamp.UTC(),
	}
	if msg.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(stored)
	if err != nil {
		return NewStoreError(driverRedis, "save message", err)
	}

	key := roomKey(msg.RoomID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, value)
		pipe.LTrim(ctx, key, 0, int64(s.limit*retainFactor-1))
		return nil
	})
	if err != nil {
		return NewStoreError(driverRedis, "save message", err)
	}
	return nil
}

// RecentMessages reads the head of the room list.
func (s *RedisStore) RecentMessages(ctx context.Context, roomID string) ([]domain.StoredMessage, error) {
	values, err := s.client.LRange(ctx, roomKey(roomID), 0, int64(s.limit-1)).Result()
	if err != nil {
		return nil, NewStoreError(driverRedis, "recent messages", err)
	}

	messages := make([]domain.StoredMessage, 0, len(values))
	for _, v := range values {
		var msg domain.StoredMessage
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			return nil, NewStoreError(driverRedis, "recent messages", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return NewStoreError(driverRedis, "close", err)
	}
	return nil
}
