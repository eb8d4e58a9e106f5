package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/logger"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	kind := "internal"
	switch status {
	case http.StatusUnauthorized:
		kind = "unauthorized"
	case http.StatusForbidden:
		kind = "forbidden"
	case http.StatusBadRequest:
		kind = "validation_failed"
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: msg}})
}

// writeError maps the domain error taxonomy to HTTP statuses. Only the error
// kind and a safe message cross the boundary; internal detail stays in logs.
func writeError(w http.ResponseWriter, err error) {
	var (
		status int
		kind   string
		msg    string
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, kind, msg = http.StatusNotFound, "not_found", "the requested resource does not exist"
	case errors.Is(err, domain.ErrForbidden):
		status, kind, msg = http.StatusForbidden, "forbidden", "you are not allowed to access this resource"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		status, kind, msg = http.StatusConflict, "invalid_state_transition", "the operation is not valid in the current state"
	case errors.Is(err, domain.ErrEmptyMessage):
		status, kind, msg = http.StatusBadRequest, "empty_message", "message text must not be empty"
	case errors.Is(err, domain.ErrValidationFailed):
		status, kind, msg = http.StatusBadRequest, "validation_failed", "the request payload is invalid"
	case errors.Is(err, domain.ErrConflict):
		status, kind, msg = http.StatusConflict, "conflict", "a concurrent change won the race, retry with fresh data"
	case errors.Is(err, domain.ErrTransientStore):
		status, kind, msg = http.StatusServiceUnavailable, "transient_store_failure", "the service is temporarily unavailable, retry shortly"
	default:
		status, kind, msg = http.StatusInternalServerError, "internal", "an unexpected error occurred"
		logger.Error("unhandled service error", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: msg}})
}

type pagedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}
