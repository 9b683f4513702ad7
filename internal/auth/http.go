// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/constants"
	"github.com/taibuivan/authgate/internal/platform/ctxutil"
	"github.com/taibuivan/authgate/internal/platform/metrics"
	requestutil "github.com/taibuivan/authgate/internal/platform/request"
	"github.com/taibuivan/authgate/internal/platform/respond"
	"github.com/taibuivan/authgate/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Transport concerns only: decoding, presence checks, status codes, and the
// session cookie. Decisions belong to [Service] and [SessionManager].
type Handler struct {
	authService    *Service
	sessionManager *SessionManager
	recorder       *metrics.Recorder
	secureCookie   bool
}

// NewHandler constructs a new [Handler]. secureCookie marks the session cookie
// Secure, which browsers only send over HTTPS.
func NewHandler(service *Service, sessions *SessionManager, recorder *metrics.Recorder, secureCookie bool) *Handler {
	return &Handler{
		authService:    service,
		sessionManager: sessions,
		recorder:       recorder,
		secureCookie:   secureCookie,
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Verifies credentials and sets the session cookie.
//   - POST /logout   : Ends the session and clears the cookie.
//   - GET  /         : Reports whether the caller is authenticated.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/", handler.home)

	return router
}

// # Request & Response Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string           `json:"message"`
	User    *SessionIdentity `json:"user"`
}

/*
register handles the creation of a new user account.

POST /register

Request:
  - Body: registerRequest (Username, Email, Name, Surname, Password)

Response:
  - 201: {"message": "User registered successfully"}
  - 400: Malformed body, missing field, or email/username already taken
  - 500: {"message": "Server error during registration"}
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Required(FieldName, input.Name).
		Required(FieldSurname, input.Surname).
		Required(FieldPassword, input.Password).
		Custom(FieldPassword, len(input.Password) > MaxPasswordBytes, fmt.Sprintf("Maximum %d bytes", MaxPasswordBytes))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Name:     input.Name,
		Surname:  input.Surname,
		Password: input.Password,
	})

	switch {
	case err == nil:
		handler.recorder.RecordRegistration(metrics.ResultSuccess)
	case errors.Is(err, ErrEmailTaken):
		handler.recorder.RecordRegistration(metrics.ResultEmailTaken)
		respond.Error(writer, request, err)
		return
	case errors.Is(err, ErrUsernameTaken):
		handler.recorder.RecordRegistration(metrics.ResultUsernameTaken)
		respond.Error(writer, request, err)
		return
	default:
		handler.recorder.RecordRegistration(metrics.ResultError)
		respond.Error(writer, request, apperr.Internal(err).WithMessage(MsgRegisterFailed))
		return
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "user_registered",
		slog.String("user_id", userID),
	)
	respond.Message(writer, http.StatusCreated, MsgRegistered)
}

/*
login verifies credentials and establishes a session.

POST /login

Description: A session already carried by the request is ended first, so a
login always issues a fresh credential.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: {"message": "Login successful", "user": {id, username, email}} + Set-Cookie
  - 400: Malformed body or missing field
  - 401: {"message": "Incorrect email or password."}
  - 500: {"message": "Internal server error"}
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.authService.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		handler.recorder.RecordLogin(metrics.OutcomeError, "")
		respond.Error(writer, request, apperr.Internal(err).WithMessage(MsgLoginFailed))
		return
	}

	if !outcome.Succeeded() {
		handler.recorder.RecordLogin(metrics.OutcomeFailure, string(outcome.Reason()))
		respond.Error(writer, request, ErrInvalidCredentials)
		return
	}

	// Regenerate: never carry a pre-login session across an identity change.
	if previous, err := request.Cookie(constants.SessionCookieName); err == nil && previous.Value != "" {
		if err := handler.sessionManager.Invalidate(ctx, previous.Value); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "previous_session_not_invalidated",
				slog.String("error", err.Error()),
			)
		}
	}

	user := outcome.User()
	session, err := handler.sessionManager.Establish(ctx, user.ID)
	if err != nil {
		handler.recorder.RecordLogin(metrics.OutcomeError, "")
		respond.Error(writer, request, apperr.Internal(err).WithMessage(MsgLoginFailed))
		return
	}

	handler.recorder.RecordLogin(metrics.OutcomeSuccess, "")
	handler.setSessionCookie(writer, session)

	respond.OK(writer, loginResponse{
		Message: MsgLoginSuccessful,
		User:    user.Identity(),
	})
}

/*
logout ends the caller's session.

POST /logout

Description: Idempotent. A request without a live session still succeeds and
the cookie is cleared either way.

Response:
  - 200: {"message": "Logout successful"}
  - 500: {"message": "Error during logout"}
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		if err := handler.sessionManager.Invalidate(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, apperr.Internal(err).WithMessage(MsgLogoutFailed))
			return
		}
	}

	handler.recorder.RecordLogout()
	handler.clearSessionCookie(writer)
	respond.Message(writer, http.StatusOK, MsgLogoutSuccess)
}

/*
home reports the caller's authentication state.

GET /

Response:
  - 200 text/plain: "Welcome, <username>! You are authenticated." or
    "You are not authenticated."
*/
func (handler *Handler) home(writer http.ResponseWriter, request *http.Request) {
	identity := requestutil.Identity(request)
	if identity == nil {
		respond.Text(writer, http.StatusOK, MsgNotAuthenticated)
		return
	}

	respond.Text(writer, http.StatusOK, fmt.Sprintf(MsgWelcomeFormat, identity.Username))
}

// # Cookie Helpers

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.Credential,
		Path:     constants.SessionCookiePath,
		Expires:  session.ExpiresAt,
		MaxAge:   int(handler.sessionManager.TTL() / time.Second),
		HttpOnly: true,
		Secure:   handler.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

