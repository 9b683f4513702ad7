// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives used by the auth domain.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, token
// generation, cookie signing) from the domain logic. The auth service depends
// on small interfaces that these types satisfy.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is returned for any cookie value that fails verification.
var ErrInvalidCredential = errors.New("sec: invalid session credential")

// sessionClaims is the payload of the signed session cookie.
//
// The opaque session token travels in the registered "jti" claim. The "exp"
// claim bounds the credential's validity independently of the session store.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// CookieSigner wraps opaque session tokens into HS256-signed cookie values.
type CookieSigner struct {
	secret []byte
	issuer string
}

// NewCookieSigner creates a [CookieSigner] keyed by secret.
func NewCookieSigner(secret, issuer string) (*CookieSigner, error) {
	if secret == "" {
		return nil, errors.New("sec: session secret must not be empty")
	}
	return &CookieSigner{secret: []byte(secret), issuer: issuer}, nil
}

// Sign produces the cookie value carrying token until expiresAt.
func (signer *CookieSigner) Sign(token string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Open verifies value and returns the embedded session token.
//
// Tampered, expired, foreign-issuer or otherwise malformed values all return
// [ErrInvalidCredential].
func (signer *CookieSigner) Open(value string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return signer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signer.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrInvalidCredential
	}
	return claims.ID, nil
}
