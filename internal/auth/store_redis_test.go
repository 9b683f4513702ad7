// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/constants"
)

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	server, client := newRedis(t)
	store := auth.NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "digest", "user-1", time.Hour))
	assert.Equal(t, time.Hour, server.TTL(constants.RedisPrefixSession+"digest"))

	userID, err := store.UserID(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, "digest"))
	require.NoError(t, store.Delete(ctx, "digest"))

	_, err = store.UserID(ctx, "digest")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	server, client := newRedis(t)
	store := auth.NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "digest", "user-1", time.Minute))
	server.FastForward(time.Minute + time.Second)

	_, err := store.UserID(ctx, "digest")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestRedisSessionStore_Unavailable(t *testing.T) {
	server, client := newRedis(t)
	store := auth.NewSessionStore(client)
	server.Close()

	_, err := store.UserID(context.Background(), "digest")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrSessionNotFound)
}
