// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/authgate/internal/platform/apperr"
)

var (
	// ErrNotFound is returned by stores when a queried row doesn't exist.
	// Callers test for it with errors.Is; it is never a client-facing failure.
	ErrNotFound = errors.New("dberr: record not found")
)

// Wrap classifies a database error. Missing rows become [ErrNotFound],
// everything else becomes an internal [apperr.AppError] that keeps the action
// and cause for the server log.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}

	// 2. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsNotFound reports whether err marks an absent record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
