package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"flyer-kart/internal/model"
	"flyer-kart/internal/session"
)

// AuthHandler handles sign-in, sign-up and password reset.
type AuthHandler struct {
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{logger: logger.With().Str("handler", "auth").Logger()}
}

type meResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *model.AuthUser `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var creds session.Credentials
	if !decodeJSON(w, r, &creds, h.logger) {
		return
	}

	user, err := sess.Auth.Login(r.Context(), creds)
	if err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: user})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var reg session.Registration
	if !decodeJSON(w, r, &reg, h.logger) {
		return
	}

	res, err := sess.Auth.Register(r.Context(), reg)
	if err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Logout handles POST /api/auth/logout. It always succeeds for the visitor.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := sess.Auth.Logout(r.Context()); err != nil {
		h.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("logout completed with errors")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	user := sess.Auth.User()
	writeJSON(w, http.StatusOK, meResponse{Authenticated: user != nil, User: user})
}

// SendOTP handles POST /api/auth/otp/send.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req session.OTPRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := sess.Auth.SendOTP(r.Context(), req); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// VerifyOTP handles POST /api/auth/otp/verify.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req session.OTPVerification
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := sess.Auth.VerifyOTP(r.Context(), req); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password_reset"})
}
