// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the authgate HTTP server.
//
// # Subcommands
//
//   - serve: Connect dependencies, migrate, and serve HTTP until signalled.
//   - migrate up|down: Apply or revert schema migrations.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process-wide JSON logger.
// Initialize first so that subsequent startup errors are structured JSON.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "authgate"))
	slog.SetDefault(log)
	return log
}
