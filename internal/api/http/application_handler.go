package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

type ApplicationHandler struct {
	applications service.ApplicationService
}

func NewApplicationHandler(applications service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type submitRequest struct {
	Kind           domain.ApplicationKind `json:"kind"`
	Name           string                 `json:"name"`
	RegistrationNo string                 `json:"registration_no"`
	Children       domain.ChildSet        `json:"children"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	app, err := h.applications.Submit(r.Context(), actor.ID, req.Kind, req.Name, req.RegistrationNo, req.Children)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	app, err := h.applications.GetApplication(r.Context(),
		domain.ApplicationKind(vars["kind"]), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	q := r.URL.Query()

	var page, pageSize int32
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = int32(v)
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		pageSize = int32(v)
	}

	apps, total, err := h.applications.ListMyApplications(r.Context(), actor.ID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[domain.Application]{Items: apps, Total: total, Page: max32(page, 1)})
}

func (h *ApplicationHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	snaps, err := h.applications.ListSnapshots(r.Context(),
		domain.ApplicationKind(vars["kind"]), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *ApplicationHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	snap, err := h.applications.GetSnapshot(r.Context(), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
