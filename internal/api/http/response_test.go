package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"memberdesk-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"invalid transition", domain.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
		{"empty message", domain.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
		{"validation", domain.ErrValidationFailed, http.StatusBadRequest, "validation_failed"},
		{"conflict", domain.ErrConflict, http.StatusConflict, "conflict"},
		{"transient", domain.ErrTransientStore, http.StatusServiceUnavailable, "transient_store_failure"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"wrapped conflict", fmt.Errorf("%w: application already resubmitted", domain.ErrConflict), http.StatusConflict, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Error.Kind)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestWriteError_NeverLeaksDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("%w: pq: relation \"rejections\" does not exist", domain.ErrTransientStore))

	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.NotContains(t, rec.Body.String(), "relation")
}
