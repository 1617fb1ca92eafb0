package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the ChallengeStore interface for
// multi-instance deployments. GETDEL keeps single-use consumption atomic
// across instances.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	evictAfter time.Duration
}

// NewRedisStore creates a new Redis store. evictAfter is applied as the key
// expiry; it must be at least the challenge TTL.
func NewRedisStore(client *redis.Client, evictAfter time.Duration) ports.ChallengeStore {
	return &RedisStore{
		client:     client,
		prefix:     "povauth:challenge:",
		evictAfter: evictAfter,
	}
}

// Put records a challenge in Redis, replacing any pending one for the address.
func (s *RedisStore) Put(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+challenge.Address, payload, s.evictAfter).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	return nil
}

// Take atomically removes and returns the pending challenge for an address.
func (s *RedisStore) Take(ctx context.Context, address string) (*core.Challenge, error) {
	payload, err := s.client.GetDel(ctx, s.prefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNoChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take challenge: %w", err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	return &challenge, nil
}
