package domain

import "time"

type SnapshotReason string

const (
	SnapshotReasonRejection    SnapshotReason = "rejection"
	SnapshotReasonResubmission SnapshotReason = "resubmission"
)

// Snapshot is an immutable point-in-time copy of an application's full data
// graph. Snapshots are never updated or deleted; they are the audit trail.
type Snapshot struct {
	ID            string          `json:"id"`
	Kind          ApplicationKind `json:"kind"`
	ApplicationID string          `json:"application_id"`
	Reason        SnapshotReason  `json:"reason"`
	TakenBy       string          `json:"taken_by"`
	TakenAt       time.Time       `json:"taken_at"`

	// Main-record fields frozen at capture time.
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`

	// Child collections frozen at capture time, one attribute per
	// collection so the copy stays queryable.
	Children ChildSet `json:"children"`
}
