package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteDomain maps a service error onto a status and body. It reports false
// for errors outside the apperr taxonomy, which get a 500.
func WriteDomain(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		Write(w, http.StatusBadRequest, APIError{Code: "VALIDATION_ERROR", Message: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		Write(w, http.StatusForbidden, APIError{Code: "FORBIDDEN", Message: "action is not allowed"})
	case errors.Is(err, apperr.ErrNotFound):
		Write(w, http.StatusNotFound, APIError{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, apperr.ErrDuplicate):
		Write(w, http.StatusConflict, APIError{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, apperr.ErrNotApproved):
		Write(w, http.StatusConflict, APIError{Code: "NOT_APPROVED", Message: err.Error()})
	case errors.Is(err, apperr.ErrRateLimited):
		Write(w, http.StatusTooManyRequests, RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "too many requests",
			RetryAfterSec: apperr.RetryAfter(err),
		})
	default:
		Write(w, http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: "internal server error"})
		return false
	}
	return true
}
