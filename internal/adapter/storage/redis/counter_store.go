package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// CounterStore keeps the receipt sequence in a single Redis key. INCR is
// atomic, so any number of instances can share one counter.
type CounterStore struct {
	client *goredis.Client
	key    string
}

func NewCounterStore(client *goredis.Client, key string) *CounterStore {
	return &CounterStore{client: client, key: key}
}

func (s *CounterStore) Next(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis counter incr %s: %w", s.key, err)
	}
	return n, nil
}

func (s *CounterStore) Current(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, s.key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis counter get %s: %w", s.key, err)
	}
	return n, nil
}
