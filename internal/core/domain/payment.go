package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment is the gateway's view of a charge, read at request time.
type Payment struct {
	Reference  string     `json:"reference"`
	Amount     int64      `json:"amount"` // In smallest currency unit
	Currency   string     `json:"currency"`
	CreatedAt  time.Time  `json:"created_at"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Status     string     `json:"status"` // Gateway-specific status, informational
	Refundable bool       `json:"refundable"`
}

// OwnedBy reports whether the payment was made by userID.
func (p *Payment) OwnedBy(userID uuid.UUID) bool {
	return p.CustomerID != nil && *p.CustomerID == userID
}

// GatewayRefund asks the gateway to return a payment in full.
type GatewayRefund struct {
	Reference string
	Amount    int64
	Currency  string
	Reason    string
}

// RefundConfirmation is the gateway acknowledgement of an executed refund.
type RefundConfirmation struct {
	Reference   string    `json:"reference"`
	RefundKey   string    `json:"refund_key"`
	Amount      int64     `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// CurrencyExponent returns the number of minor-unit digits for an ISO 4217 code.
// Amounts are stored in the smallest unit the gateway settles in; rupiah and yen have none.
func CurrencyExponent(currency string) int32 {
	switch strings.ToUpper(currency) {
	case "IDR", "JPY", "KRW", "VND":
		return 0
	}
	return 2
}
