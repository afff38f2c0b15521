package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/acadify/core"
)

// Store keeps keys in redis, without expiry.
type Store struct {
	client *redis.Client
}

var _ core.KeyValueStore = (*Store)(nil)

// Open connects to redis with short timeouts. It does not dial until the first command.
func Open(addr, password string, db int) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Store{client: client}
}

// Healthy verifies redis connectivity.
func (s *Store) Healthy(ctx context.Context) bool {
	if s == nil || s.client == nil {
		return false
	}
	return s.client.Ping(ctx).Err() == nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(s.client.Set(ctx, key, value, 0).Err(), "setting %s", key)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, key).Err(), "removing %s", key)
}
