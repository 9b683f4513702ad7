// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authgate/internal/auth"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/metrics"
	"github.com/taibuivan/authgate/internal/platform/middleware"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
	redis  *miniredis.Miniredis
	users  *memoryCredentials
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	redisServer, redisClient := newRedis(t)
	users := &memoryCredentials{}

	service := auth.NewService(users, newHasher(t))
	sessions := auth.NewSessionManager(auth.NewSessionStore(redisClient), users, newSigner(t), auth.DefaultSessionTTL)
	handler := auth.NewHandler(service, sessions, metrics.New(), false)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(sessions, constants.SessionCookieName, nil, slog.New(slog.DiscardHandler)))
	router.Mount("/", handler.Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: server,
		client: &http.Client{Jar: jar, Timeout: 10 * time.Second},
		redis:  redisServer,
		users:  users,
	}
}

type reply struct {
	status  int
	body    string
	cookies []*http.Cookie
}

func (app *testApp) do(t *testing.T, method, path string, body any) reply {
	t.Helper()

	var reader io.Reader
	switch payload := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(payload)
	default:
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequest(method, app.server.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := app.client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return reply{status: response.StatusCode, body: string(raw), cookies: response.Cookies()}
}

func (r reply) message(t *testing.T) string {
	t.Helper()
	var envelope struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.body), &envelope), r.body)
	return envelope.Message
}

func sessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	return nil
}

/*
TestHandler_Scenario walks the register, login, logout lifecycle of one user.
*/
func TestHandler_Scenario(t *testing.T) {
	app := newTestApp(t)

	registered := app.do(t, http.MethodPost, "/register", alice())
	assert.Equal(t, http.StatusCreated, registered.status)
	assert.Equal(t, "User registered successfully", registered.message(t))

	duplicate := alice()
	duplicate.Username = "alice2"
	conflict := app.do(t, http.MethodPost, "/register", duplicate)
	assert.Equal(t, http.StatusBadRequest, conflict.status)
	assert.Equal(t, "Email already exists. Try logging in.", conflict.message(t))

	wrong := app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, wrong.status)
	assert.Equal(t, "Incorrect email or password.", wrong.message(t))
	assert.Nil(t, sessionCookie(wrong.cookies))

	anonymous := app.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "You are not authenticated.", anonymous.body)

	login := app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, login.status, login.body)

	var loggedIn struct {
		Message string                `json:"message"`
		User    auth.SessionIdentity `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(login.body), &loggedIn))
	assert.Equal(t, "Login successful", loggedIn.Message)
	assert.Equal(t, "alice", loggedIn.User.Username)
	assert.Equal(t, "a@x.com", loggedIn.User.Email)
	assert.NotEmpty(t, loggedIn.User.ID)
	assert.NotContains(t, login.body, "password")

	cookie := sessionCookie(login.cookies)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(auth.DefaultSessionTTL/time.Second), cookie.MaxAge)

	home := app.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, home.status)
	assert.Equal(t, "Welcome, alice! You are authenticated.", home.body)

	logout := app.do(t, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusOK, logout.status)
	assert.Equal(t, "Logout successful", logout.message(t))
	assert.Empty(t, app.redis.Keys())

	after := app.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "You are not authenticated.", after.body)
}

/*
TestHandler_UsernameTaken verifies the second uniqueness message.
*/
func TestHandler_UsernameTaken(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/register", alice()).status)

	duplicate := alice()
	duplicate.Email = "other@x.com"
	conflict := app.do(t, http.MethodPost, "/register", duplicate)

	assert.Equal(t, http.StatusBadRequest, conflict.status)
	assert.Equal(t, "Username already exists. Try logging in.", conflict.message(t))
}

/*
TestHandler_UnknownEmailMatchesWrongPassword verifies both login failures look identical.
*/
func TestHandler_UnknownEmailMatchesWrongPassword(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/register", alice()).status)

	unknown := app.do(t, http.MethodPost, "/login", map[string]string{"email": "nobody@x.com", "password": "secret1"})
	wrong := app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, unknown.status)
	assert.Equal(t, unknown.status, wrong.status)
	assert.JSONEq(t, unknown.body, wrong.body)
}

/*
TestHandler_BadRequests covers payloads rejected before reaching the service.
*/
func TestHandler_BadRequests(t *testing.T) {
	app := newTestApp(t)

	missingSurname := map[string]string{"username": "bob", "email": "b@x.com", "name": "B", "password": "pw"}
	tooLong := alice()
	tooLong.Password = strings.Repeat("p", auth.MaxPasswordBytes+1)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"register_malformed", "/register", `{"username":`},
		{"register_wrong_type", "/register", `{"username": 42}`},
		{"register_missing_field", "/register", missingSurname},
		{"register_password_too_long", "/register", tooLong},
		{"login_malformed", "/login", `not json`},
		{"login_missing_password", "/login", map[string]string{"email": "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := app.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, got.status, got.body)
			assert.NotEmpty(t, got.message(t))
		})
	}

	assert.Empty(t, app.users.records)
}

/*
TestHandler_LoginLongPassword verifies that an overlong wrong password gets the
same 401 as any other wrong password.
*/
func TestHandler_LoginLongPassword(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/register", alice()).status)

	short := app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "wrong"})
	long := app.do(t, http.MethodPost, "/login", map[string]string{
		"email":    "a@x.com",
		"password": strings.Repeat("p", auth.MaxPasswordBytes+1),
	})

	assert.Equal(t, http.StatusUnauthorized, long.status, long.body)
	assert.Equal(t, short.status, long.status)
	assert.Equal(t, short.body, long.body)
	assert.Equal(t, "Incorrect email or password.", long.message(t))
}

/*
TestHandler_WhitespaceFieldsArePresent verifies that registration only checks
presence and does not trim.
*/
func TestHandler_WhitespaceFieldsArePresent(t *testing.T) {
	app := newTestApp(t)

	input := alice()
	input.Username = "  "

	got := app.do(t, http.MethodPost, "/register", input)
	assert.Equal(t, http.StatusCreated, got.status, got.body)
	require.Len(t, app.users.records, 1)
	assert.Equal(t, "  ", app.users.records[0].Username)
}

/*
TestHandler_InternalErrors verifies the route-specific 500 messages and that
causes never reach the client.
*/
func TestHandler_InternalErrors(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		app := newTestApp(t)
		app.users.findErr = errors.New("dial tcp 10.0.0.3:5432")

		got := app.do(t, http.MethodPost, "/register", alice())
		assert.Equal(t, http.StatusInternalServerError, got.status)
		assert.Equal(t, "Server error during registration", got.message(t))
		assert.NotContains(t, got.body, "10.0.0.3")
	})

	t.Run("login", func(t *testing.T) {
		app := newTestApp(t)
		app.users.findErr = errors.New("dial tcp 10.0.0.3:5432")

		got := app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "secret1"})
		assert.Equal(t, http.StatusInternalServerError, got.status)
		assert.Equal(t, "Internal server error", got.message(t))
	})

	t.Run("logout", func(t *testing.T) {
		app := newTestApp(t)
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/register", alice()).status)
		require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/login", map[string]string{"email": "a@x.com", "password": "secret1"}).status)

		app.redis.Close()

		got := app.do(t, http.MethodPost, "/logout", nil)
		assert.Equal(t, http.StatusInternalServerError, got.status)
		assert.Equal(t, "Error during logout", got.message(t))
	})
}

/*
TestHandler_LogoutWithoutSession verifies logout is idempotent.
*/
func TestHandler_LogoutWithoutSession(t *testing.T) {
	app := newTestApp(t)

	first := app.do(t, http.MethodPost, "/logout", nil)
	second := app.do(t, http.MethodPost, "/logout", nil)

	assert.Equal(t, http.StatusOK, first.status)
	assert.Equal(t, http.StatusOK, second.status)
}

/*
TestHandler_LoginRegeneratesSession verifies that a second login retires the first credential.
*/
func TestHandler_LoginRegeneratesSession(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/register", alice()).status)

	credentials := map[string]string{"email": "a@x.com", "password": "secret1"}

	first := sessionCookie(app.do(t, http.MethodPost, "/login", credentials).cookies)
	require.NotNil(t, first)
	second := sessionCookie(app.do(t, http.MethodPost, "/login", credentials).cookies)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	assert.Len(t, app.redis.Keys(), 1)

	// Replay the retired cookie without the jar.
	request, err := http.NewRequest(http.MethodGet, app.server.URL+"/", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: first.Value})

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, "You are not authenticated.", string(body))
}

/*
TestHandler_ForgedCookieIsAnonymous verifies that tampering never authenticates.
*/
func TestHandler_ForgedCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)

	request, err := http.NewRequest(http.MethodGet, app.server.URL+"/", nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "eyJhbGciOiJub25lIn0.eyJqdGkiOiJ4In0."})

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "You are not authenticated.", string(body))
}
