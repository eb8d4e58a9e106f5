package domain

import "time"

type RejectionStatus string

const (
	// RejectionStatusPendingReview means the member replied and the ball is
	// with the reviewer.
	RejectionStatusPendingReview RejectionStatus = "pending_review"
	// RejectionStatusPendingFix means the member still owes a correction.
	RejectionStatusPendingFix RejectionStatus = "pending_fix"
	RejectionStatusResolved   RejectionStatus = "resolved"
	RejectionStatusCancelled  RejectionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s RejectionStatus) Terminal() bool {
	return s == RejectionStatusResolved || s == RejectionStatusCancelled
}

// Rejection is one ledger entry: a single rejection episode for an
// application, pointing at the snapshot taken when it was opened and advanced
// on every resubmission.
type Rejection struct {
	ID                string          `json:"id"`
	Kind              ApplicationKind `json:"kind"`
	ApplicationID     string          `json:"application_id"`
	MemberID          string          `json:"member_id"`
	SnapshotID        string          `json:"snapshot_id"`
	ReviewerID        string          `json:"reviewer_id"`
	Reason            string          `json:"reason"`
	Status            RejectionStatus `json:"status"`
	ResubmissionCount int32           `json:"resubmission_count"`
	UnreadAdminCount  int32           `json:"unread_admin_count"`
	UnreadMemberCount int32           `json:"unread_member_count"`
	LastMessageAt     *time.Time      `json:"last_message_at,omitempty"`
	ResolvedBy        *string         `json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RejectionSummary is the list-view projection: ledger fields joined with the
// identifying fields of the live application.
type RejectionSummary struct {
	Rejection
	ApplicationName string `json:"application_name"`
	RegistrationNo  string `json:"registration_no"`
}

// RejectionFilter narrows the ledger lists. Zero values mean "no filter".
type RejectionFilter struct {
	Status   RejectionStatus
	Kind     ApplicationKind
	Search   string // matches application name or registration number
	Page     int32  // 1-based
	PageSize int32
}

func (f RejectionFilter) Normalize() RejectionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return f
}
