// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
// 10 rounds keeps a single verification in the tens of milliseconds.
const DefaultHashCost = 10

// maxPasswordBytes is the bcrypt input limit. Anything longer would be
// truncated by the algorithm, so it is rejected instead.
const maxPasswordBytes = 72

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext.
	ErrEmptyPassword = errors.New("sec: password must not be empty")

	// ErrPasswordTooLong is returned when the plaintext exceeds the bcrypt input limit.
	ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")
)

// Hasher produces and verifies salted bcrypt digests at a fixed cost.
//
// The salt is embedded in the digest, so [Hasher.Verify] needs nothing else.
// A Hasher is immutable and safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a [Hasher] using the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("sec: hash cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost reports the configured work factor.
func (hasher *Hasher) Cost() int { return hasher.cost }

// Hash hashes a plain-text password using the bcrypt algorithm.
func (hasher *Hasher) Hash(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrEmptyPassword
	}
	if len(plainTextPassword) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its hashed version in constant time.
// A malformed digest never matches, and neither does an input [Hasher.Hash]
// would refuse, since bcrypt only reads the first 72 bytes.
func (hasher *Hasher) Verify(plainTextPassword, existingHash string) bool {
	if plainTextPassword == "" || len(plainTextPassword) > maxPasswordBytes {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
