// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements credential-based identity for the gateway.

It covers account registration, login verification, and the server-side
session that keeps a browser authenticated between requests.

Architecture:

  - Service: Registration and the login decision (Register, Authenticate).
  - SessionManager: Issues, resolves, and invalidates session credentials.
  - Stores: Postgres holds accounts, Redis holds the session token mapping.
  - Handler: The HTTP delivery layer (register, login, logout, home).
*/
package auth

import (
	"time"

	"github.com/taibuivan/authgate/internal/platform/sec"
)

// # Domain Entities

// UserRecord is a persisted account.
//
// # Rules
//   - ID is assigned by the store on insert and never changes.
//   - Username and Email are unique across records. Uniqueness is checked by
//     [Service.Register], not by the database.
//   - PasswordHash is a bcrypt digest, never plaintext.
type UserRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
}

// Identity projects the record onto the fields carried by a session.
func (record *UserRecord) Identity() *SessionIdentity {
	return &SessionIdentity{
		ID:       record.ID,
		Username: record.Username,
		Email:    record.Email,
	}
}

// SessionIdentity is what an authenticated request knows about its caller.
type SessionIdentity = sec.Identity

// # Authentication Outcome

// FailureReason explains why an authentication attempt did not succeed.
type FailureReason string

// FailureInvalidCredentials covers both an unknown email and a wrong password.
const FailureInvalidCredentials FailureReason = "invalid_credentials"

// AuthOutcome is the result of [Service.Authenticate]: either a user or a
// failure reason, never both.
type AuthOutcome struct {
	user   *UserRecord
	reason FailureReason
}

// Success builds a successful outcome for user.
func Success(user *UserRecord) AuthOutcome {
	return AuthOutcome{user: user}
}

// Failure builds a failed outcome with the given reason.
func Failure(reason FailureReason) AuthOutcome {
	return AuthOutcome{reason: reason}
}

// Succeeded reports whether the attempt identified a user.
func (outcome AuthOutcome) Succeeded() bool { return outcome.user != nil }

// User returns the authenticated record, or nil on failure.
func (outcome AuthOutcome) User() *UserRecord { return outcome.user }

// Reason returns the failure reason, or "" on success.
func (outcome AuthOutcome) Reason() FailureReason { return outcome.reason }

// # Field Identifiers

// Field names for validation and JSON payloads in the authentication domain.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldName     = "name"
	FieldSurname  = "surname"
	FieldPassword = "password"
	FieldUser     = "user"
	FieldMessage  = "message"
)
