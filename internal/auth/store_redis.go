// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authgate/internal/platform/constants"
)

// ErrSessionNotFound is returned when a token digest has no live mapping.
var ErrSessionNotFound = errors.New("auth: session not found")

// RedisSessionStore implements [SessionStore] using Redis keys with a TTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore.
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

/*
Save stores the digest-to-user mapping. Redis expires the key after ttl.

Parameters:
  - ctx: context.Context
  - tokenHash: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisSessionStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := store.client.Set(ctx, sessionKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
UserID resolves a digest to its user.

Description: Returns ErrSessionNotFound if the key is absent or expired.

Parameters:
  - ctx: context.Context
  - tokenHash: string

Returns:
  - string: UserID
  - error: ErrSessionNotFound or connectivity errors
*/
func (store *RedisSessionStore) UserID(ctx context.Context, tokenHash string) (string, error) {
	userID, err := store.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return userID, nil
}

// Delete removes the mapping. Missing keys are ignored by Redis.
func (store *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := store.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
