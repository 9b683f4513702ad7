// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

// memoryCredentials is an in-process [auth.CredentialStore] that records the
// order of calls and can be told to fail.
type memoryCredentials struct {
	mu        sync.Mutex
	records   []auth.UserRecord
	calls     []string
	findErr   error
	insertErr error
}

func (store *memoryCredentials) find(call string, match func(auth.UserRecord) bool) (*auth.UserRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.calls = append(store.calls, call)
	if store.findErr != nil {
		return nil, store.findErr
	}
	for _, record := range store.records {
		if match(record) {
			found := record
			return &found, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryCredentials) FindByEmail(_ context.Context, email string) (*auth.UserRecord, error) {
	return store.find("FindByEmail", func(record auth.UserRecord) bool { return record.Email == email })
}

func (store *memoryCredentials) FindByUsername(_ context.Context, username string) (*auth.UserRecord, error) {
	return store.find("FindByUsername", func(record auth.UserRecord) bool { return record.Username == username })
}

func (store *memoryCredentials) FindByID(_ context.Context, id string) (*auth.UserRecord, error) {
	return store.find("FindByID", func(record auth.UserRecord) bool { return record.ID == id })
}

func (store *memoryCredentials) Insert(_ context.Context, record *auth.UserRecord) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.calls = append(store.calls, "Insert")
	if store.insertErr != nil {
		return "", store.insertErr
	}
	record.ID = fmt.Sprintf("user-%d", len(store.records)+1)
	store.records = append(store.records, *record)
	return record.ID, nil
}

func (store *memoryCredentials) remove(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i, record := range store.records {
		if record.ID == id {
			store.records = append(store.records[:i], store.records[i+1:]...)
			return
		}
	}
}

func newHasher(t *testing.T) *sec.Hasher {
	t.Helper()
	hasher, err := sec.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

func newSigner(t *testing.T) *sec.CookieSigner {
	t.Helper()
	signer, err := sec.NewCookieSigner("test-session-secret", "authgate-test")
	require.NoError(t, err)
	return signer
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

// alice is the canonical registration used across tests.
func alice() auth.RegisterInput {
	return auth.RegisterInput{
		Username: "alice",
		Email:    "a@x.com",
		Name:     "A",
		Surname:  "B",
		Password: "secret1",
	}
}
