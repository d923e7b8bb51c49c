package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/session"
)

const (
	msgMisconfigured  = "Server misconfigured"
	msgInvalidRequest = "Invalid request"
	maxLoginBodyBytes = 4 << 10
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	gate *session.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate *session.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// Login handles POST /api/auth.
//
//	@Summary		Exchange the shared password for a session cookie
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Password"
//	@Success		200		{object}	OKResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		429		{object}	RateLimitResponse
//	@Failure		500		{object}	errResponse
//	@Router			/auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	client := clientKey(r)
	if err := h.gate.Admit(r.Context(), client); err != nil {
		writeGateError(w, err)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	token, err := h.gate.Login(r.Context(), client, req.Password)
	if err != nil {
		writeGateError(w, err)
		return
	}
	http.SetCookie(w, sessionCookie(r, token, int(session.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Logout handles POST /api/logout.
//
//	@Summary		Clear the session cookie
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	OKResponse
//	@Router			/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessionCookie(r, "", -1))
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func writeGateError(w http.ResponseWriter, err error) {
	var rlErr *session.RateLimitError
	var authErr *session.AuthError
	switch {
	case errors.As(err, &rlErr):
		w.Header().Set("Retry-After", strconv.Itoa(rlErr.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, RateLimitResponse{Error: rlErr.Error(), RetryAfter: rlErr.RetryAfter})
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, authErr.Error())
	case errors.Is(err, apperr.ErrMisconfigured):
		writeError(w, http.StatusInternalServerError, msgMisconfigured)
	default:
		slog.Error("login failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
