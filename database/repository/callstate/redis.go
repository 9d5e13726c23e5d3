package callstate

import (
	"context"
	"encoding/json"
	"time"

	"receptionist/models"

	"github.com/go-redis/redis/v8"
)

const callContextPrefix = "call:ctx:"

// RedisStore is the production Store: one JSON document per call with a TTL
// so abandoned calls clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, callID string) (*models.CallContext, error) {
	data, err := s.client.Get(ctx, callContextPrefix+callID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var callCtx models.CallContext
	if err := json.Unmarshal([]byte(data), &callCtx); err != nil {
		return nil, err
	}
	return &callCtx, nil
}

func (s *RedisStore) Put(ctx context.Context, callCtx *models.CallContext) error {
	// Upsert with created-at preserved: the first write wins the timestamp.
	if existing, err := s.Get(ctx, callCtx.CallID); err == nil && existing != nil {
		callCtx.CreatedAt = existing.CreatedAt
	} else if callCtx.CreatedAt.IsZero() {
		callCtx.CreatedAt = time.Now()
	}
	callCtx.UpdatedAt = time.Now()

	b, err := json.Marshal(callCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, callContextPrefix+callCtx.CallID, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, callID string) error {
	return s.client.Del(ctx, callContextPrefix+callID).Err()
}
