package domain

import "time"

// Member is an account in the directory: either an applicant ("member") or a
// reviewer ("admin"). Authentication itself happens elsewhere; the engine only
// needs names, emails and the role for authorization and notifications.
type Member struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      SenderRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}
