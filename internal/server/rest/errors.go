package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgram/internal/common"
)

// ErrorResponse is the envelope of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service error onto a status. Credential failures
// share one message so the reply does not reveal whether the email exists.
func (s *RESTServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, common.ErrCredentialMismatch):
		writeError(w, http.StatusUnauthorized, "wrong email or password")
	case errors.Is(err, common.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, common.ErrAccessKeyExhausted),
		errors.Is(err, common.ErrDuplicateAccessKey):
		s.logger.Warn(ctx, "retryable failure", "error", err, "request_id", GetRequestID(ctx))
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry later")
	default:
		s.logger.Error(ctx, "request failed", "error", err, "request_id", GetRequestID(ctx))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
