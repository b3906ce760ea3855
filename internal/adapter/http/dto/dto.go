package dto

import (
	"refund-service/internal/core/domain"
)

// CreateRefundRequest is the request body for a withdrawal request.
type CreateRefundRequest struct {
	PaymentReference string  `json:"payment_reference" binding:"required,max=255,safe_ref"`
	Reason           *string `json:"reason,omitempty" binding:"omitempty,max=2000"`
}

// ResolveRefundRequest is the request body for an admin decision.
type ResolveRefundRequest struct {
	Approve    *bool   `json:"approve" binding:"required"`
	AdminNotes *string `json:"admin_notes,omitempty" binding:"omitempty,max=2000"`
}

// RefundResponse is a refund request as returned by the API.
type RefundResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	DisplayName      *string `json:"display_name,omitempty"`
	PaymentReference string  `json:"payment_reference"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	Reason           *string `json:"reason,omitempty"`
	Status           string  `json:"status"`
	PaymentDate      string  `json:"payment_date"`
	RequestDate      string  `json:"request_date"`
	IsWithinPeriod   bool    `json:"is_within_period"`
	ProcessedAt      *string `json:"processed_at,omitempty"`
	ProcessedBy      *string `json:"processed_by,omitempty"`
	AdminNotes       *string `json:"admin_notes,omitempty"`
}

// RefundOutcomeResponse is the response body for POST /refunds.
type RefundOutcomeResponse struct {
	Success      bool                         `json:"success"`
	AutoRefunded bool                         `json:"auto_refunded"`
	Message      string                       `json:"message"`
	MessageKey   string                       `json:"message_key"`
	Request      RefundResponse               `json:"request"`
	Warnings     []domain.CompensationWarning `json:"warnings,omitempty"`
}

// ResolveOutcomeResponse is the response body for an admin decision.
type ResolveOutcomeResponse struct {
	Request  RefundResponse               `json:"request"`
	Warnings []domain.CompensationWarning `json:"warnings,omitempty"`
}

// RefundListResponse wraps a paginated refund list.
type RefundListResponse struct {
	Items      []RefundResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
