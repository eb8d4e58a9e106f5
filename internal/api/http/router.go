package http

import (
	"net/http"

	"memberdesk-backend/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter wires every engine operation under /api/v1. All routes require a
// valid bearer token; role checks are per route.
func NewRouter(
	tokens security.TokenManager,
	reviews *ReviewHandler,
	conversations *ConversationHandler,
	resubmissions *ResubmissionHandler,
	applications *ApplicationHandler,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	// Applications
	api.HandleFunc("/applications", RequireMember(applications.Submit)).Methods("POST")
	api.HandleFunc("/applications/mine", RequireMember(applications.ListMine)).Methods("GET")
	api.HandleFunc("/applications/{kind}/{id}", applications.Get).Methods("GET")
	api.HandleFunc("/applications/{kind}/{id}/snapshots", applications.ListSnapshots).Methods("GET")
	api.HandleFunc("/applications/{kind}/{id}/reject", RequireReviewer(reviews.Reject)).Methods("POST")
	api.HandleFunc("/applications/{kind}/{id}/approve", RequireReviewer(reviews.Approve)).Methods("POST")
	api.HandleFunc("/applications/{kind}/{id}/cancel", reviews.CancelApplication).Methods("POST")

	// Rejection ledger
	api.HandleFunc("/rejections", reviews.List).Methods("GET")
	api.HandleFunc("/rejections/{id}", reviews.GetDetail).Methods("GET")
	api.HandleFunc("/rejections/{id}/resolve", RequireReviewer(reviews.Resolve)).Methods("POST")
	api.HandleFunc("/rejections/{id}/cancel", RequireReviewer(reviews.CancelRejection)).Methods("POST")
	api.HandleFunc("/rejections/{id}/audit", RequireReviewer(reviews.AuditTrail)).Methods("GET")

	// Conversation thread
	api.HandleFunc("/rejections/{id}/messages", conversations.ListMessages).Methods("GET")
	api.HandleFunc("/rejections/{id}/messages", conversations.PostMessage).Methods("POST")

	// Resubmission
	api.HandleFunc("/rejections/{id}/resubmit", RequireMember(resubmissions.Resubmit)).Methods("POST")

	// Snapshots (audit/history view)
	api.HandleFunc("/snapshots/{id}", applications.GetSnapshot).Methods("GET")

	return router
}
