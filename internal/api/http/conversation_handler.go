package http

import (
	"encoding/json"
	"net/http"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

type ConversationHandler struct {
	conversations service.ConversationService
}

func NewConversationHandler(conversations service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type postMessageRequest struct {
	Text        string   `json:"text"`
	Attachments []string `json:"attachments,omitempty"`
}

func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.conversations.PostMessage(r.Context(), vars["id"], actor.Role, actor.ID, req.Text, req.Attachments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	msgs, err := h.conversations.ListMessages(r.Context(), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
