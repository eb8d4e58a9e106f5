package repository

import (
	"context"
	"time"

	"memberdesk-backend/internal/domain"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	// GetByID loads the main record plus all child collections.
	GetByID(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error)
	// GetForUpdate loads the main record under a row lock. Child collections
	// are not loaded.
	GetForUpdate(ctx context.Context, kind domain.ApplicationKind, id string) (*domain.Application, error)
	// Update writes the mutable main-record fields and stamps updated_at.
	Update(ctx context.Context, app *domain.Application) error
	// ReplaceChildren replaces each supplied child collection wholesale.
	ReplaceChildren(ctx context.Context, kind domain.ApplicationKind, id string, update *domain.ApplicationUpdate) error
	ListByMember(ctx context.Context, memberID string, page, pageSize int32) ([]domain.Application, int32, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, snap *domain.Snapshot) error
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
	ListByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) ([]domain.Snapshot, error)
}

type RejectionRepository interface {
	Create(ctx context.Context, rej *domain.Rejection) error
	GetByID(ctx context.Context, id string) (*domain.Rejection, error)
	// GetForUpdate locks the ledger row with NOWAIT; a held lock surfaces as
	// domain.ErrConflict.
	GetForUpdate(ctx context.Context, id string) (*domain.Rejection, error)
	// Update writes status and resolution fields and stamps updated_at.
	Update(ctx context.Context, rej *domain.Rejection) error
	// AdvanceSnapshot atomically moves the current-snapshot pointer and
	// increments resubmission_count by one, returning the new count.
	AdvanceSnapshot(ctx context.Context, id, snapshotID string) (int32, error)
	// IncrementUnread bumps the unread counter of the given side by one and
	// stamps last_message_at. The increment happens in SQL, never
	// read-modify-write.
	IncrementUnread(ctx context.Context, id string, side domain.SenderRole, at time.Time) error
	ResetUnread(ctx context.Context, id string, side domain.SenderRole) error
	FindOpenByApplication(ctx context.Context, kind domain.ApplicationKind, appID string) (*domain.Rejection, error)
	ListForMember(ctx context.Context, memberID string, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error)
	ListForReviewer(ctx context.Context, f domain.RejectionFilter) ([]domain.RejectionSummary, int32, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByRejection returns messages in non-decreasing created_at order.
	ListByRejection(ctx context.Context, rejectionID string) ([]domain.Message, error)
	// MarkReadByRole marks every unread message authored by the given role as
	// read. The flag never moves back.
	MarkReadByRole(ctx context.Context, rejectionID string, authorRole domain.SenderRole) error
}

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByTarget(ctx context.Context, targetID string, limit int32) ([]domain.AuditEntry, error)
}

type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Member, error)
}

// Repositories bundles the repo set bound to one transaction (or to the bare
// connection pool when used outside ExecTx).
type Repositories struct {
	Applications  ApplicationRepository
	Snapshots     SnapshotRepository
	Rejections    RejectionRepository
	Conversations ConversationRepository
	Audit         AuditRepository
	Members       MemberRepository
}

// TxRunner executes fn with a repo set bound to a single database
// transaction. fn returning an error rolls the whole transaction back; no
// component may commit independently mid-operation.
type TxRunner interface {
	ExecTx(ctx context.Context, fn func(r *Repositories) error) error
}
