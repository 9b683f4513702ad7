// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

// ErrNoSession means the credential does not map to a live session.
// Callers treat it as an anonymous request, not as a failure.
var ErrNoSession = errors.New("auth: no session")

// CookieCodec wraps a session token into a tamper-evident cookie value.
type CookieCodec interface {
	Sign(token string, expiresAt time.Time) (string, error)
	Open(value string) (string, error)
}

// Session is a freshly established login, ready to be set as a cookie.
type Session struct {
	Credential string
	ExpiresAt  time.Time
}

// SessionManager issues and resolves server-side sessions.
//
// The browser holds a signed cookie carrying a random token. Redis holds the
// SHA-256 of that token mapped to a user ID. Identity is re-read from the
// credential store on every request.
type SessionManager struct {
	sessions    SessionStore
	credentials CredentialStore
	codec       CookieCodec
	ttl         time.Duration
	now         func() time.Time
}

// NewSessionManager constructs a [SessionManager]. A non-positive ttl falls
// back to [DefaultSessionTTL].
func NewSessionManager(sessions SessionStore, credentials CredentialStore, codec CookieCodec, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions:    sessions,
		credentials: credentials,
		codec:       codec,
		ttl:         ttl,
		now:         time.Now,
	}
}

// TTL returns the session lifetime.
func (manager *SessionManager) TTL() time.Duration { return manager.ttl }

/*
Establish starts a session for userID.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *Session: Signed cookie credential and its expiry
  - error: Entropy, signing, or storage failures
*/
func (manager *SessionManager) Establish(ctx context.Context, userID string) (*Session, error) {
	token, err := sec.GenerateSecureToken(SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_session_token_failed: %w", err)
	}

	expiresAt := manager.now().Add(manager.ttl)

	credential, err := manager.codec.Sign(token, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("auth_session_sign_failed: %w", err)
	}

	if err := manager.sessions.Save(ctx, sec.HashToken(token), userID, manager.ttl); err != nil {
		return nil, fmt.Errorf("auth_session_save_failed: %w", err)
	}

	return &Session{Credential: credential, ExpiresAt: expiresAt}, nil
}

/*
Resolve maps a cookie credential to the identity of its user.

Description: A bad signature, an expired cookie, a lapsed Redis key, or a
deleted account all yield ErrNoSession. Storage failures are returned wrapped.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - *SessionIdentity: Fresh identity from the credential store
  - error: ErrNoSession or storage failures
*/
func (manager *SessionManager) Resolve(ctx context.Context, credential string) (*SessionIdentity, error) {
	token, err := manager.codec.Open(credential)
	if err != nil {
		return nil, ErrNoSession
	}

	tokenHash := sec.HashToken(token)

	userID, err := manager.sessions.UserID(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("auth_session_lookup_failed: %w", err)
	}

	user, err := manager.credentials.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// The account is gone; drop the orphaned mapping.
			if err := manager.sessions.Delete(ctx, tokenHash); err != nil {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "orphaned_session_not_deleted",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
			}
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("auth_session_user_lookup_failed: %w", err)
	}

	return user.Identity(), nil
}

/*
Invalidate ends the session behind credential.

Description: Idempotent. An unreadable or already-ended credential is a no-op.

Parameters:
  - ctx: context.Context
  - credential: string

Returns:
  - error: Storage failures only
*/
func (manager *SessionManager) Invalidate(ctx context.Context, credential string) error {
	token, err := manager.codec.Open(credential)
	if err != nil {
		return nil
	}

	if err := manager.sessions.Delete(ctx, sec.HashToken(token)); err != nil {
		return fmt.Errorf("auth_session_invalidate_failed: %w", err)
	}
	return nil
}
