package models

import "time"

// InquiryStatus is the registration state of a prospective provider.
type InquiryStatus string

const (
	InquiryPending  InquiryStatus = "PENDING"
	InquiryApproved InquiryStatus = "APPROVED"
	InquiryRejected InquiryStatus = "REJECTED"
	InquiryNoShow   InquiryStatus = "NO_SHOW"
)

// InquiryStatuses lists every inquiry status in declaration order.
var InquiryStatuses = []InquiryStatus{InquiryPending, InquiryApproved, InquiryRejected, InquiryNoShow}

// InquiryTransitions holds the approver-driven edges of the inquiry lifecycle.
var InquiryTransitions = TransitionTable[InquiryStatus]{
	InquiryPending:  {InquiryApproved, InquiryRejected},
	InquiryApproved: {InquiryNoShow},
}

// Valid reports whether s is a known status.
func (s InquiryStatus) Valid() bool {
	for _, known := range InquiryStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Inquiry is a salon's request to be registered as a service provider.
type Inquiry struct {
	ID        string        `db:"id" json:"id"`
	FirstName string        `db:"first_name" json:"first_name"`
	LastName  string        `db:"last_name" json:"last_name"`
	Email     string        `db:"email" json:"email"`
	Phone     string        `db:"phone" json:"phone"`
	SalonName string        `db:"salon_name" json:"salon_name"`
	City      string        `db:"city" json:"city"`
	Status    InquiryStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// InquiryFilter narrows inquiry listings.
type InquiryFilter struct {
	Status   *InquiryStatus
	Page     int
	PageSize int
}
