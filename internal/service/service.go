package service

import (
	"context"

	"memberdesk-backend/internal/domain"
)

// RejectionDetail is the detail view: ledger fields plus the live application
// data. Audit/history views read the frozen snapshots instead.
type RejectionDetail struct {
	Rejection   domain.Rejection   `json:"rejection"`
	Application domain.Application `json:"application"`
}

// ResubmissionResult confirms a successful resubmission to the caller.
type ResubmissionResult struct {
	SnapshotID        string `json:"snapshot_id"`
	ResubmissionCount int32  `json:"resubmission_count"`
}

type ReviewService interface {
	RejectApplication(ctx context.Context, kind domain.ApplicationKind, appID, reviewerID, reason string) (*domain.Rejection, error)
	ApproveApplication(ctx context.Context, kind domain.ApplicationKind, appID, reviewerID string) (*domain.Application, error)
	CancelApplication(ctx context.Context, kind domain.ApplicationKind, appID, actorID string, role domain.SenderRole) error
	ResolveRejection(ctx context.Context, rejectionID, reviewerID string) (*domain.Rejection, error)
	CancelRejection(ctx context.Context, rejectionID, reviewerID string) (*domain.Rejection, error)
	ListForMember(ctx context.Context, memberID string, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error)
	ListForReviewer(ctx context.Context, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error)
	GetRejectionDetail(ctx context.Context, rejectionID, requesterID string, role domain.SenderRole) (*RejectionDetail, error)
	ListAuditTrail(ctx context.Context, targetID string, limit int32) ([]domain.AuditEntry, error)
}

type ConversationService interface {
	PostMessage(ctx context.Context, rejectionID string, role domain.SenderRole, senderID, text string, attachments []string) (*domain.Message, error)
	// ListMessages also marks the other role's messages read and resets the
	// caller's unread counter on the ledger, in the same transaction.
	ListMessages(ctx context.Context, rejectionID, requesterID string, role domain.SenderRole) ([]domain.Message, error)
}

type ResubmissionService interface {
	Resubmit(ctx context.Context, rejectionID, memberID string, update *domain.ApplicationUpdate, comment string) (*ResubmissionResult, error)
}

type ApplicationService interface {
	Submit(ctx context.Context, memberID string, kind domain.ApplicationKind, name, registrationNo string, children domain.ChildSet) (*domain.Application, error)
	GetApplication(ctx context.Context, kind domain.ApplicationKind, id, requesterID string, role domain.SenderRole) (*domain.Application, error)
	ListMyApplications(ctx context.Context, memberID string, page, pageSize int32) ([]domain.Application, int32, error)
	GetSnapshot(ctx context.Context, snapshotID, requesterID string, role domain.SenderRole) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, kind domain.ApplicationKind, appID, requesterID string, role domain.SenderRole) ([]domain.Snapshot, error)
}

// Notification event types handed to the dispatcher.
const (
	EventRejected    = "application.rejected"
	EventApproved    = "application.approved"
	EventCancelled   = "application.cancelled"
	EventResubmitted = "application.resubmitted"
	EventResolved    = "rejection.resolved"
	EventMessage     = "rejection.message"
)

// Notifier is the fire-and-forget notification dispatcher. It is invoked
// strictly after the transaction commits; failures are logged and never
// propagate.
type Notifier interface {
	Dispatch(ctx context.Context, memberID, eventType string, payload map[string]string)
}

type EmailService interface {
	SendRejectionNotice(ctx context.Context, email, name, appName, reason string) error
	SendApprovalNotice(ctx context.Context, email, name, appName string) error
	SendCancellationNotice(ctx context.Context, email, name, appName string) error
	SendResubmissionReceipt(ctx context.Context, email, name, appName string) error
	SendResolutionNotice(ctx context.Context, email, name, appName string) error
	SendNewMessageNotice(ctx context.Context, email, name, appName string) error
	SendPendingFixReminder(ctx context.Context, email, name, appName string, daysOpen int) error
	SendReviewerDigest(ctx context.Context, email string, openCount, unreadCount int) error
}
