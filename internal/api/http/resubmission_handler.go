package http

import (
	"encoding/json"
	"net/http"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

type ResubmissionHandler struct {
	resubmissions service.ResubmissionService
}

func NewResubmissionHandler(resubmissions service.ResubmissionService) *ResubmissionHandler {
	return &ResubmissionHandler{resubmissions: resubmissions}
}

type resubmitRequest struct {
	UpdatedData *domain.ApplicationUpdate `json:"updated_data,omitempty"`
	Comment     string                    `json:"comment,omitempty"`
}

func (h *ResubmissionHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	var req resubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.resubmissions.Resubmit(r.Context(), vars["id"], actor.ID, req.UpdatedData, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
