// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// CredentialStore defines the data access contract for user accounts.
//
// Lookups are exact and case-sensitive. A missing record is reported as
// [dberr.ErrNotFound]; every other error is a storage failure.
type CredentialStore interface {

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *UserRecord: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - ctx: context.Context
		  - username: string

		Returns:
		  - *UserRecord: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - ctx: context.Context
		  - id: string

		Returns:
		  - *UserRecord: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(ctx context.Context, id string) (*UserRecord, error)

	/*
		Insert persists a new account. The store assigns the ID, overwriting
		any value already set on the record.

		Parameters:
		  - ctx: context.Context
		  - record: *UserRecord

		Returns:
		  - string: The assigned ID
		  - error: Persistence failures
	*/
	Insert(ctx context.Context, record *UserRecord) (string, error)
}

// # Session Data Access

// SessionStore maps session token digests to user IDs with an expiry.
//
// Only digests are stored, so a leaked store never yields usable cookies.
type SessionStore interface {

	/*
		Save binds a token digest to a user for ttl.

		Parameters:
		  - ctx: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		UserID returns the user bound to a token digest.

		Parameters:
		  - ctx: context.Context
		  - tokenHash: string

		Returns:
		  - string: UserID
		  - error: ErrSessionNotFound if absent or expired, otherwise retrieval failures
	*/
	UserID(ctx context.Context, tokenHash string) (string, error)

	/*
		Delete removes a token digest. Deleting an absent digest is not an error.

		Parameters:
		  - ctx: context.Context
		  - tokenHash: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(ctx context.Context, tokenHash string) error
}
