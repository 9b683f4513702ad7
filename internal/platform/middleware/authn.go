// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/metrics"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

// SessionResolver maps a session cookie value to the identity it belongs to.
//
// Defining it here decouples the middleware from the auth package, so tests
// can inject a fake resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, cookieValue string) (*sec.Identity, error)
}

// Authenticate resolves the session cookie into a [sec.Identity].
//
// # Flow
//  1. No cookie: the request proceeds as anonymous.
//  2. Cookie present: resolve it through [SessionResolver].
//  3. Any resolution failure also proceeds as anonymous. Requests are never
//     rejected here; handlers decide what an anonymous caller may do.
//  4. On success the identity is injected into the request context and the
//     request logger gains a user_id attribute.
//
// logger is used when no request logger is in the context.
func Authenticate(resolver SessionResolver, cookieName string, recorder *metrics.Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Anonymous Access ───────────────────────────────────────────
			cookie, err := request.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				recorder.RecordSessionResolution(metrics.ResultAnonymous)
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Session Resolution ─────────────────────────────────────────
			requestLogger := logger
			if ctxutil.HasLogger(ctx) {
				requestLogger = ctxutil.GetLogger(ctx)
			}

			identity, err := resolver.Resolve(ctx, cookie.Value)
			if err != nil {
				requestLogger.DebugContext(ctx, "session_unresolved",
					slog.String("request_id", ctxutil.GetRequestID(ctx)),
					slog.String("error", err.Error()),
				)
				recorder.RecordSessionResolution(metrics.ResultAnonymous)
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			recorder.RecordSessionResolution(metrics.ResultAuthenticated)
			ctx = ctxutil.WithIdentity(ctx, identity)
			ctx = ctxutil.WithLogger(ctx, requestLogger.With(slog.String("user_id", identity.ID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
