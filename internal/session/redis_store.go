package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore keeps session records in Redis; TTL follows ExpiresAt.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: "booker:session:",
	}
}

// Save writes the session record with a TTL derived from its expiry.
func (s *RedisStore) Save(sess Session) error {
	if sess.ID == "" {
		return errors.New("session id cannot be empty")
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Get resolves a session id to its record.
func (s *RedisStore) Get(id string) (Session, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return Session{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	// Redis TTL should have evicted it already; don't hand out an expired record.
	if time.Now().After(sess.ExpiresAt) {
		return Session{}, false, s.Delete(id)
	}
	return sess, true, nil
}

// Delete removes a session record.
func (s *RedisStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
