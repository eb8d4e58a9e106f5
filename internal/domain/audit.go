package domain

import "time"

// Audit action types recorded by the engine.
const (
	AuditActionReject   = "application.reject"
	AuditActionApprove  = "application.approve"
	AuditActionCancel   = "application.cancel"
	AuditActionResubmit = "application.resubmit"
	AuditActionResolve  = "rejection.resolve"
	AuditActionDiscard  = "rejection.cancel"
	AuditActionMessage  = "rejection.message"
)

// AuditEntry is one append-only record of who did what. Consumed by external
// observability tooling.
type AuditEntry struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	TargetID    string    `json:"target_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
