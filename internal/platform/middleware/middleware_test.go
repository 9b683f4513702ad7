// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/middleware"
	"github.com/taibuivan/authgate/internal/platform/sec"
)

type fakeResolver struct {
	identity *sec.Identity
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (*sec.Identity, error) {
	f.calls++
	return f.identity, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// captureIdentity records the identity seen by the final handler.
func captureIdentity(seen **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	alice := &sec.Identity{ID: "u-1", Username: "alice", Email: "alice@example.com"}

	tests := []struct {
		name      string
		cookie    string
		resolver  *fakeResolver
		want      *sec.Identity
		wantCalls int
	}{
		{"no_cookie", "", &fakeResolver{identity: alice}, nil, 0},
		{"resolved", "signed", &fakeResolver{identity: alice}, alice, 1},
		{"unresolved", "signed", &fakeResolver{err: errors.New("no session")}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Identity
			handler := middleware.Authenticate(tt.resolver, constants.SessionCookieName, nil, discardLogger())(captureIdentity(&seen))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.want, seen)
			assert.Equal(t, tt.wantCalls, tt.resolver.calls)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", seen)

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, strings.Repeat("x", 500))
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Len(t, seen, 36)
}

func TestCORS(t *testing.T) {
	handler := middleware.CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed_origin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.Header.Set(constants.HeaderOrigin, "http://localhost:5173")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign_origin", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/login", nil)
		request.Header.Set(constants.HeaderOrigin, "https://evil.example")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodOptions, "/login", nil)
		request.Header.Set(constants.HeaderOrigin, "http://localhost:5173")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
}

func TestAuthenticate_TagsRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	resolver := &fakeResolver{identity: &sec.Identity{ID: "u-1", Username: "alice"}}

	final := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "handler_ran")
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.StructuredLogger(logger)(
		middleware.Authenticate(resolver, constants.SessionCookieName, nil, discardLogger())(final),
	)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "signed"})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "handler_ran")
	assert.Contains(t, lines[0], `"user_id":"u-1"`)
	assert.Contains(t, lines[1], "http_request_finished")
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}

func TestPanicRecovery_AbortHandlerPropagates(t *testing.T) {
	handler := middleware.PanicRecovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
