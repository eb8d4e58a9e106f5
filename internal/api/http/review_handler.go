package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"memberdesk-backend/internal/domain"
	"memberdesk-backend/internal/service"

	"github.com/gorilla/mux"
)

// ReviewHandler exposes the rejection ledger operations.
type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rej, err := h.reviews.RejectApplication(r.Context(),
		domain.ApplicationKind(vars["kind"]), vars["id"], actor.ID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rej)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	app, err := h.reviews.ApproveApplication(r.Context(),
		domain.ApplicationKind(vars["kind"]), vars["id"], actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *ReviewHandler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	err := h.reviews.CancelApplication(r.Context(),
		domain.ApplicationKind(vars["kind"]), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	f := filterFromQuery(r)

	var (
		items []domain.RejectionSummary
		total int32
		err   error
	)
	if actor.Role == domain.RoleAdmin {
		items, total, err = h.reviews.ListForReviewer(r.Context(), f)
	} else {
		items, total, err = h.reviews.ListForMember(r.Context(), actor.ID, f)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[domain.RejectionSummary]{
		Items: items, Total: total, Page: f.Normalize().Page,
	})
}

func (h *ReviewHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	detail, err := h.reviews.GetRejectionDetail(r.Context(), vars["id"], actor.ID, actor.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ReviewHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	rej, err := h.reviews.ResolveRejection(r.Context(), vars["id"], actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rej)
}

func (h *ReviewHandler) CancelRejection(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vars := mux.Vars(r)

	rej, err := h.reviews.CancelRejection(r.Context(), vars["id"], actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rej)
}

func (h *ReviewHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	limit := int32(50)
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = int32(n)
	}

	entries, err := h.reviews.ListAuditTrail(r.Context(), vars["id"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func filterFromQuery(r *http.Request) domain.RejectionFilter {
	q := r.URL.Query()
	f := domain.RejectionFilter{
		Status: domain.RejectionStatus(q.Get("status")),
		Kind:   domain.ApplicationKind(q.Get("kind")),
		Search: q.Get("search"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = int32(page)
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		f.PageSize = int32(size)
	}
	return f
}
