package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"staybook/internal/domain"
)

// Factory keeps each session in one hash, "session:<id>". Every write
// pushes the hash's expiry out by ttl; zero ttl means no expiry.
type Factory struct {
	c   *redis.Client
	ttl time.Duration
}

func NewFactory(c *redis.Client, ttl time.Duration) *Factory { return &Factory{c: c, ttl: ttl} }

func (f *Factory) ForSession(id string) domain.KVStore {
	return &Store{c: f.c, key: "session:" + id, ttl: f.ttl}
}

type Store struct {
	c   *redis.Client
	key string
	ttl time.Duration
}

func (s *Store) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.c.HGet(ctx, s.key, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, field, value string) error {
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key, field, value)
		if s.ttl > 0 {
			p.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	return err
}

func (s *Store) Remove(ctx context.Context, field string) error {
	return s.c.HDel(ctx, s.key, field).Err()
}
