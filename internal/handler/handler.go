package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/middleware"
	"flyer-kart/internal/model"
	"flyer-kart/internal/orderform"
	"flyer-kart/internal/storefront"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// statusByCode maps domain error codes to HTTP statuses. Unlisted codes are 500.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:         http.StatusBadRequest,
	model.ErrCodeInvalidInput:        http.StatusBadRequest,
	model.ErrCodeValidationFailed:    http.StatusBadRequest,
	model.ErrCodeUnknownField:        http.StatusBadRequest,
	model.ErrCodeUnknownOption:       http.StatusBadRequest,
	model.ErrCodeIndexOutOfRange:     http.StatusBadRequest,
	model.ErrCodePhotoNotSupported:   http.StatusBadRequest,
	model.ErrCodeInvalidCode:         http.StatusBadRequest,
	model.ErrCodeExpiredCode:         http.StatusBadRequest,
	model.ErrCodeWeakPassword:        http.StatusBadRequest,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeWrongCredentials:    http.StatusUnauthorized,
	model.ErrCodeEmailNotVerified:    http.StatusForbidden,
	model.ErrCodeFlyerNotFound:       http.StatusNotFound,
	model.ErrCodeAccountNotFound:     http.StatusNotFound,
	model.ErrCodeMaxReached:          http.StatusConflict,
	model.ErrCodeMinReached:          http.StatusConflict,
	model.ErrCodeFormNotLoaded:       http.StatusConflict,
	model.ErrCodeSubmissionInFlight:  http.StatusConflict,
	model.ErrCodeTogglePending:       http.StatusConflict,
	model.ErrCodeAccountExists:       http.StatusConflict,
	model.ErrCodeInvalidPrice:        http.StatusUnprocessableEntity,
	model.ErrCodeRateLimited:         http.StatusTooManyRequests,
	model.ErrCodeNetwork:             http.StatusBadGateway,
	model.ErrCodeProvider:            http.StatusBadGateway,
	model.ErrCodeUpstreamUnavailable: http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeErr maps err onto a status and error body.
func writeErr(w http.ResponseWriter, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{Error: model.ErrCodeInternalError, Message: "internal server error"}
	status := http.StatusInternalServerError

	var (
		de *model.DomainError
		ve *orderform.ValidationError
		se *backend.StatusError
	)
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp = model.ErrorResponse{
			Error:   model.ErrCodeValidationFailed,
			Message: model.ErrValidationFailed.Message,
			Details: ve.Errors,
		}
	case errors.As(err, &de):
		if s, ok := statusByCode[de.Code]; ok {
			status = s
		}
		resp = model.ErrorResponse{Error: de.Code, Message: de.Message}
	case errors.As(err, &se):
		status = http.StatusBadGateway
		if se.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		resp = model.ErrorResponse{Error: model.ErrCodeUpstreamUnavailable, Message: se.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp = model.ErrorResponse{Error: model.ErrCodeUpstreamUnavailable, Message: "upstream request timed out"}
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("code", resp.Error).Msg("request failed")
	writeJSON(w, status, resp)
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// currentSession returns the request's storefront session, writing a 500
// when the session middleware did not run.
func currentSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*storefront.Session, bool) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "session unavailable", logger)
		return nil, false
	}
	return sess, true
}

// signedIn returns the session and the signed-in user's id, writing a 401
// for anonymous visitors.
func signedIn(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*storefront.Session, string, bool) {
	sess, ok := currentSession(w, r, logger)
	if !ok {
		return nil, "", false
	}
	userID := sess.Auth.UserID()
	if userID == "" {
		writeErr(w, model.ErrNotAuthenticated, logger)
		return nil, "", false
	}
	return sess, userID, true
}
