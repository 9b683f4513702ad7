// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Session Constraints

const (
	// SessionTokenLength is the byte length of the random session token.
	SessionTokenLength = 32

	// DefaultSessionTTL is how long a session stays valid without a logout.
	DefaultSessionTTL = 24 * time.Hour

	// MaxPasswordBytes is the bcrypt input limit. Longer passwords are rejected.
	MaxPasswordBytes = 72
)

// # Error Codes

const (
	CodeEmailTaken    = "EMAIL_TAKEN"
	CodeUsernameTaken = "USERNAME_TAKEN"
)

// # Response Messages

const (
	MsgRegistered      = "User registered successfully"
	MsgLoginSuccessful = "Login successful"
	MsgLogoutSuccess   = "Logout successful"

	MsgRegisterFailed = "Server error during registration"
	MsgLoginFailed    = "Internal server error"
	MsgLogoutFailed   = "Error during logout"

	MsgWelcomeFormat    = "Welcome, %s! You are authenticated."
	MsgNotAuthenticated = "You are not authenticated."
)
