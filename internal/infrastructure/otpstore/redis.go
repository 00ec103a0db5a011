package otpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unalone/unalone-api/internal/domain"
)

const redisKeyPrefix = "otp:"

// RedisStore keeps OTP records in Redis so multiple API instances share
// one store. The record's expiry doubles as the Redis TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(email string) string {
	return redisKeyPrefix + email
}

func (s *RedisStore) Set(ctx context.Context, email string, rec domain.OTPRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("otp expiry must be in the future: %w", domain.ErrBadRequest)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	return s.client.Set(ctx, s.key(email), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	val, err := s.client.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var rec domain.OTPRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}
