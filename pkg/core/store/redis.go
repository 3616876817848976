package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"strategic_finance/pkg/models"
)

const (
	redisKeyPrefix = "finmodel:"
	redisIndexKey  = "finmodel:ids"
)

// RedisStore keeps models as JSON strings with no expiry, so several API
// replicas can serve the same export links. It is still a cache: nothing
// guarantees the data survives a Redis restart.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. The store owns the client and closes it.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects and pings before returning.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) Put(ctx context.Context, model *models.FinancialModel) error {
	if model == nil || model.ModelID == "" {
		return fmt.Errorf("model ID cannot be empty")
	}

	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+model.ModelID, payload, 0)
		pipe.SAdd(ctx, redisIndexKey, model.ModelID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store model %s: %w", model.ModelID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.FinancialModel, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", id, err)
	}

	var m models.FinancialModel
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model %s: %w", id, err)
	}
	return &m, nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, redisIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count models: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
