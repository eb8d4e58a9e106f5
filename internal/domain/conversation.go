package domain

import "time"

type SenderRole string

const (
	RoleAdmin  SenderRole = "admin"
	RoleMember SenderRole = "member"
)

// Other returns the opposite side of the conversation.
func (r SenderRole) Other() SenderRole {
	if r == RoleAdmin {
		return RoleMember
	}
	return RoleAdmin
}

// Message is one entry in the conversation thread attached to a rejection
// ledger entry. Messages are immutable once created and ordered by creation
// time; the read flag only ever moves from unread to read.
type Message struct {
	ID          string     `json:"id"`
	RejectionID string     `json:"rejection_id"`
	SenderRole  SenderRole `json:"sender_role"`
	SenderID    string     `json:"sender_id"`
	Body        string     `json:"body"`
	Attachments []string   `json:"attachments,omitempty"` // opaque document keys
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}
