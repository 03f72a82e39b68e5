package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

const (
	sessionKeyPrefix    = "session:"
	hashFieldUserID     = "user_id"
	hashFieldRole       = "role"
	hashFieldCreatedAt  = "created_at"
	hashFieldLastSeenAt = "last_seen_at"
)

// RedisSessionStore keeps sessions as TTL'd Redis hashes.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *RedisSessionStore) Create(ctx context.Context, userID string, role domain.Role, ttl time.Duration) (string, error) {
	sessionID := uuid.NewString()
	key := sessionKey(sessionID)
	now := time.Now().UTC().Format(time.RFC3339)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key,
		hashFieldUserID, userID,
		hashFieldRole, string(role),
		hashFieldCreatedAt, now,
		hashFieldLastSeenAt, now,
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return sessionID, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*port.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if fields[hashFieldUserID] == "" {
		// HGetAll returns an empty map for missing keys rather than redis.Nil.
		return nil, port.ErrSessionNotFound
	}

	return &port.Session{
		UserID: fields[hashFieldUserID],
		Role:   domain.Role(fields[hashFieldRole]),
	}, nil
}

func (r *RedisSessionStore) Refresh(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := sessionKey(sessionID)

	// HSET on a missing key would resurrect it, so check existence first.
	if _, err := r.client.HGet(ctx, key, hashFieldUserID).Result(); err != nil {
		if err == redis.Nil {
			return port.ErrSessionNotFound
		}
		return fmt.Errorf("check session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, hashFieldLastSeenAt, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}
