package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NotificationKind selects the message template sent to the user.
type NotificationKind string

const (
	NotificationPending      NotificationKind = "pending"
	NotificationAutoRefunded NotificationKind = "auto_refunded"
	NotificationApproved     NotificationKind = "approved"
	NotificationRejected     NotificationKind = "rejected"
)

// EventType returns the event bus type for this kind, e.g. REFUND_APPROVED.
func (k NotificationKind) EventType() string {
	return "REFUND_" + strings.ToUpper(string(k))
}

// Notification tells a user what happened to their refund request.
type Notification struct {
	Kind             NotificationKind `json:"kind"`
	UserID           uuid.UUID        `json:"user_id"`
	RequestID        uuid.UUID        `json:"request_id"`
	PaymentReference string           `json:"payment_reference"`
	Amount           int64            `json:"amount"`
	Currency         string           `json:"currency"`
	AdminNotes       *string          `json:"admin_notes,omitempty"`
}

// NewNotification builds the notification for a request in its current state.
func NewNotification(kind NotificationKind, req *RefundRequest) Notification {
	return Notification{
		Kind:             kind,
		UserID:           req.UserID,
		RequestID:        req.ID,
		PaymentReference: req.PaymentReference,
		Amount:           req.Amount,
		Currency:         req.Currency,
		AdminNotes:       req.AdminNotes,
	}
}

// DedupKey identifies this notification across redeliveries.
func (n Notification) DedupKey() string {
	return n.RequestID.String() + ":" + string(n.Kind)
}
