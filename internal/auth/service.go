// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/dberr"
)

// # Domain Errors

var (
	// ErrEmailTaken is returned by Register when the email is already in use.
	ErrEmailTaken = apperr.New(http.StatusBadRequest, CodeEmailTaken, "Email already exists. Try logging in.")

	// ErrUsernameTaken is returned by Register when the username is already in use.
	ErrUsernameTaken = apperr.New(http.StatusBadRequest, CodeUsernameTaken, "Username already exists. Try logging in.")

	// ErrInvalidCredentials is the single client-facing login failure. It never
	// says whether the email or the password was wrong.
	ErrInvalidCredentials = apperr.New(http.StatusUnauthorized, apperr.CodeInvalidCredentials, "Incorrect email or password.")
)

// # Contracts & Types

// PasswordHasher turns passwords into salted digests and checks them.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Service implements registration and login verification.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	credentials CredentialStore
	hasher      PasswordHasher

	decoyOnce   sync.Once
	decoyDigest string
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(credentials CredentialStore, hasher PasswordHasher) *Service {
	return &Service{
		credentials: credentials,
		hasher:      hasher,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Surname  string
	Password string
}

/*
Register checks uniqueness, hashes the password, and persists a new account.

Description: Email is checked before username, so a request colliding on both
reports the email. The checks and the insert are not atomic: two concurrent
registrations with the same email can both pass the check.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - string: ID of the new account
  - err: ErrEmailTaken, ErrUsernameTaken, hashing or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (string, error) {

	// 1. Email uniqueness
	if taken, err := service.exists(ctx, service.credentials.FindByEmail, input.Email); err != nil {
		return "", fmt.Errorf("auth_service_email_lookup_failed: %w", err)
	} else if taken {
		return "", ErrEmailTaken
	}

	// 2. Username uniqueness
	if taken, err := service.exists(ctx, service.credentials.FindByUsername, input.Username); err != nil {
		return "", fmt.Errorf("auth_service_username_lookup_failed: %w", err)
	} else if taken {
		return "", ErrUsernameTaken
	}

	// 3. Never store plain-text passwords
	digest, err := service.hasher.Hash(input.Password)
	if err != nil {
		return "", fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// 4. Persist; the store assigns the ID
	id, err := service.credentials.Insert(ctx, &UserRecord{
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		Surname:      input.Surname,
		PasswordHash: digest,
	})
	if err != nil {
		return "", fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return id, nil
}

// exists runs a lookup and reports whether it found a record.
func (service *Service) exists(ctx context.Context, find func(context.Context, string) (*UserRecord, error), key string) (bool, error) {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, dberr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// # Authentication Flow

/*
Authenticate decides whether email and password identify an account.

Description: An unknown email and a wrong password produce the same failure.
An unknown email still pays for one bcrypt comparison so response timing does
not reveal which accounts exist. No session is created here.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - AuthOutcome: Success(user) or Failure(FailureInvalidCredentials)
  - err: Storage failures only
*/
func (service *Service) Authenticate(ctx context.Context, email, password string) (AuthOutcome, error) {
	user, err := service.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			service.burnComparison(ctx, password)
			return Failure(FailureInvalidCredentials), nil
		}
		return AuthOutcome{}, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !service.hasher.Verify(password, user.PasswordHash) {
		return Failure(FailureInvalidCredentials), nil
	}

	return Success(user), nil
}

// burnComparison verifies against a throwaway digest, computed once.
func (service *Service) burnComparison(ctx context.Context, password string) {
	service.decoyOnce.Do(func() {
		digest, err := service.hasher.Hash("authgate-decoy-password")
		if err != nil {
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "auth_decoy_hash_failed",
				slog.String("error", err.Error()),
			)
			return
		}
		service.decoyDigest = digest
	})
	if service.decoyDigest != "" {
		service.hasher.Verify(password, service.decoyDigest)
	}
}
