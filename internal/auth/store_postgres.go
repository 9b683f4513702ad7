// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/pkg/uuid"
)

// Querier is the subset of [pgxpool.Pool] used by the credential store.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # User Repository

// PostgresCredentialStore implements [CredentialStore] using pgx.
type PostgresCredentialStore struct {
	db Querier
}

// NewCredentialStore creates a new PostgreSQL implementation of the CredentialStore.
func NewCredentialStore(db Querier) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

const selectUserColumns = `SELECT id, username, email, name, surname, passwordhash, createdat FROM users`

/*
Insert persists a new user record into the users table.

Description: Assigns a time-sortable ID and the creation timestamp before
writing the row.

Parameters:
  - ctx: context.Context
  - record: *UserRecord (Entity to persist)

Returns:
  - string: The assigned ID
  - error: Connectivity errors
*/
func (store *PostgresCredentialStore) Insert(ctx context.Context, record *UserRecord) (string, error) {
	const query = `
		INSERT INTO users (id, username, email, name, surname, passwordhash, createdat)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	record.ID = uuid.New()
	record.CreatedAt = time.Now().UTC()

	_, err := store.db.Exec(ctx, query,
		record.ID,
		record.Username,
		record.Email,
		record.Name,
		record.Surname,
		record.PasswordHash,
		record.CreatedAt,
	)
	if err != nil {
		return "", dberr.Wrap(err, "postgres_credential_store_insert")
	}

	return record.ID, nil
}

// FindByEmail retrieves a user record by email address.
func (store *PostgresCredentialStore) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return store.findOne(ctx, "find_by_email", selectUserColumns+` WHERE email = $1 LIMIT 1`, email)
}

// FindByUsername retrieves a user record by username.
func (store *PostgresCredentialStore) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	return store.findOne(ctx, "find_by_username", selectUserColumns+` WHERE username = $1 LIMIT 1`, username)
}

// FindByID retrieves a user record by primary key. An ID that is not a UUID
// cannot exist and is reported as not found without a round trip.
func (store *PostgresCredentialStore) FindByID(ctx context.Context, id string) (*UserRecord, error) {
	if !uuid.IsValid(id) {
		return nil, dberr.ErrNotFound
	}
	return store.findOne(ctx, "find_by_id", selectUserColumns+` WHERE id = $1`, id)
}

// findOne scans a single row, mapping pgx.ErrNoRows to [dberr.ErrNotFound].
func (store *PostgresCredentialStore) findOne(ctx context.Context, action, query string, arg string) (*UserRecord, error) {
	record := &UserRecord{}
	err := store.db.QueryRow(ctx, query, arg).Scan(
		&record.ID,
		&record.Username,
		&record.Email,
		&record.Name,
		&record.Surname,
		&record.PasswordHash,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, fmt.Sprintf("postgres_credential_store_%s", action))
	}

	return record, nil
}
