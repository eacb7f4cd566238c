package model

import "time"

// RentalStatus is the lifecycle state of a rental. Active is initial; ended
// and cancelled are terminal.
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalEnded     RentalStatus = "ended"
	RentalCancelled RentalStatus = "cancelled"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalActive, RentalEnded, RentalCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s RentalStatus) Terminal() bool {
	return s == RentalEnded || s == RentalCancelled
}

// CanTransition reports whether a rental in state s may be moved to next.
// Resending the current value is always allowed.
func (s RentalStatus) CanTransition(next RentalStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

// Rental represents the rentals table
type Rental struct {
	ID          int64        `json:"id"`
	ApartmentID int64        `json:"apartment_id"`
	TenantID    int64        `json:"tenant_id"`
	StartDate   Date         `json:"start_date"`
	EndDate     Date         `json:"end_date"`
	Status      RentalStatus `json:"status"`
	TotalAmount float64      `json:"total_amount"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RentalEvent is one audit row written alongside a lifecycle step.
type RentalEvent struct {
	ID          int64        `json:"id"`
	RentalID    int64        `json:"rental_id"`
	ApartmentID int64        `json:"apartment_id"`
	Action      string       `json:"action"`
	FromStatus  RentalStatus `json:"from_status,omitempty"`
	ToStatus    RentalStatus `json:"to_status,omitempty"`
	Released    bool         `json:"released"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Rental event actions.
const (
	RentalEventCreated = "created"
	RentalEventUpdated = "updated"
	RentalEventDeleted = "deleted"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentBankTransfer:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Payment represents the payments table
type Payment struct {
	ID          int64         `json:"id"`
	RentalID    int64         `json:"rental_id"`
	PaymentDate Date          `json:"payment_date"`
	Amount      float64       `json:"amount"`
	Method      PaymentMethod `json:"payment_method"`
	Status      PaymentStatus `json:"status"`
}
