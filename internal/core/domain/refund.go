package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus represents the lifecycle state of a refund request.
type RefundStatus string

const (
	RefundStatusPending      RefundStatus = "pending"
	RefundStatusAutoRefunded RefundStatus = "auto_refunded"
	RefundStatusApproved     RefundStatus = "approved"
	RefundStatusRejected     RefundStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusAutoRefunded, RefundStatusApproved, RefundStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true once the request can no longer change.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusAutoRefunded ||
		s == RefundStatusApproved ||
		s == RefundStatusRejected
}

// RefundExecuted returns true for the states in which money went back to the user.
func (s RefundStatus) RefundExecuted() bool {
	return s == RefundStatusAutoRefunded || s == RefundStatusApproved
}

// CanTransitionTo encodes the forward-only state machine.
// A request is created as pending or auto_refunded; only pending may move on.
func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	if s != RefundStatusPending {
		return false
	}
	return next == RefundStatusApproved || next == RefundStatusRejected
}

// RefundRequest records one user's withdrawal request for one gateway payment.
// PaymentReference is unique across all requests.
type RefundRequest struct {
	ID               uuid.UUID    `json:"id"`
	UserID           uuid.UUID    `json:"user_id"`
	PaymentReference string       `json:"payment_reference"`
	Amount           int64        `json:"amount"` // In smallest currency unit
	Currency         string       `json:"currency"`
	Reason           *string      `json:"reason,omitempty"`
	Status           RefundStatus `json:"status"`
	PaymentDate      time.Time    `json:"payment_date"`
	RequestDate      time.Time    `json:"request_date"`
	IsWithinPeriod   bool         `json:"is_within_period"`
	ProcessedAt      *time.Time   `json:"processed_at,omitempty"`
	ProcessedBy      *uuid.UUID   `json:"processed_by,omitempty"`
	AdminNotes       *string      `json:"admin_notes,omitempty"`
}

// Resolution is the admin decision written onto a pending request.
type Resolution struct {
	Status      RefundStatus
	ProcessedAt time.Time
	ProcessedBy uuid.UUID
	AdminNotes  *string
}

// CompensationStep names a best-effort side effect that runs after a refund.
type CompensationStep string

const (
	StepCancelSubscription CompensationStep = "cancel_subscription"
	StepNotify             CompensationStep = "notify"
)

// CompensationWarning reports a side effect that failed without undoing the refund.
type CompensationWarning struct {
	Step    CompensationStep `json:"step"`
	Message string           `json:"message"`
}
