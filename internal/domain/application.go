package domain

import "time"

type ApplicationKind string

const (
	KindOrdinaryCompany      ApplicationKind = "oc"
	KindAssociateCompany     ApplicationKind = "ac"
	KindAssociateMember      ApplicationKind = "am"
	KindInternationalCompany ApplicationKind = "ic"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
)

// validTransitions is the exhaustive status transition table. Anything not
// listed here fails with ErrInvalidStateTransition.
var validTransitions = map[ApplicationStatus]map[ApplicationStatus]bool{
	ApplicationStatusPending: {
		ApplicationStatusApproved:  true, // reviewer approval
		ApplicationStatusRejected:  true, // reviewer rejection
		ApplicationStatusCancelled: true, // member/reviewer cancellation
	},
	ApplicationStatusRejected: {
		ApplicationStatusPending:   true, // member resubmission
		ApplicationStatusCancelled: true, // reviewer cancellation of the ledger
	},
}

// CanTransition reports whether a status change is allowed by the table.
func CanTransition(from, to ApplicationStatus) bool {
	return validTransitions[from][to]
}

type Application struct {
	ID              string            `json:"id"`
	Kind            ApplicationKind   `json:"kind"`
	MemberID        string            `json:"member_id"`
	Status          ApplicationStatus `json:"status"`
	Name            string            `json:"name"`
	RegistrationNo  string            `json:"registration_no"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ResubmittedAt   *time.Time        `json:"resubmitted_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Children        ChildSet          `json:"children"`
}

type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Representative struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Classification struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// DocumentRef points at an uploaded file by opaque storage key. The engine
// never dereferences it.
type DocumentRef struct {
	ID      string `json:"id"`
	FileKey string `json:"file_key"`
	Label   string `json:"label"`
}

// ChildSet is the full related-data graph of an application. Which collections
// are actually carried depends on the application kind (see KindSchema).
type ChildSet struct {
	Addresses       []Address        `json:"addresses,omitempty"`
	Representatives []Representative `json:"representatives,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	Products        []Product        `json:"products,omitempty"`
	Documents       []DocumentRef    `json:"documents,omitempty"`
}

// AsUpdate expresses the populated collections as a wholesale-replace update.
func (c *ChildSet) AsUpdate() *ApplicationUpdate {
	u := &ApplicationUpdate{}
	if c.Addresses != nil {
		u.Addresses = &c.Addresses
	}
	if c.Representatives != nil {
		u.Representatives = &c.Representatives
	}
	if c.Classifications != nil {
		u.Classifications = &c.Classifications
	}
	if c.Products != nil {
		u.Products = &c.Products
	}
	if c.Documents != nil {
		u.Documents = &c.Documents
	}
	return u
}

// ApplicationUpdate replaces named child collections wholesale. A nil field
// leaves that collection untouched; a non-nil field (even pointing at an empty
// slice) replaces the stored collection completely. Partial merges do not
// exist.
type ApplicationUpdate struct {
	Name            *string           `json:"name,omitempty"`
	RegistrationNo  *string           `json:"registration_no,omitempty"`
	Addresses       *[]Address        `json:"addresses,omitempty"`
	Representatives *[]Representative `json:"representatives,omitempty"`
	Classifications *[]Classification `json:"classifications,omitempty"`
	Products        *[]Product        `json:"products,omitempty"`
	Documents       *[]DocumentRef    `json:"documents,omitempty"`
}

// IsEmpty reports whether the update carries no changes at all.
func (u *ApplicationUpdate) IsEmpty() bool {
	if u == nil {
		return true
	}
	return u.Name == nil && u.RegistrationNo == nil &&
		u.Addresses == nil && u.Representatives == nil &&
		u.Classifications == nil && u.Products == nil && u.Documents == nil
}
