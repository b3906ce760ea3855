package midtrans

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RefundKeyPrefix namespaces refund keys so a retried refund for the same
// payment is deduplicated by Midtrans.
const RefundKeyPrefix = "withdrawal-"

const transactionTimeLayout = "2006-01-02 15:04:05"

// Midtrans reports transaction times in Western Indonesia Time.
var wib = time.FixedZone("WIB", 7*60*60)

// ErrFractionalAmount is returned when a refund amount has minor units that
// Midtrans cannot carry. The refund is not sent.
var ErrFractionalAmount = errors.New("refund amount is not a whole number of currency units")

var refundableStatuses = map[string]bool{
	"settlement": true,
	"capture":    true,
}

// coreAPI is the subset of coreapi.Client used here.
type coreAPI interface {
	CheckTransaction(param string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
	RefundTransaction(param string, req *coreapi.RefundReq) (*coreapi.RefundResponse, *midtrans.Error)
}

// OrderOwners maps a Midtrans order id to the user who placed it.
type OrderOwners interface {
	OwnerOfOrder(ctx context.Context, orderID string) (*uuid.UUID, error)
}

// Gateway implements ports.PaymentGateway on the Midtrans Core API.
type Gateway struct {
	api    coreAPI
	owners OrderOwners
	now    func() time.Time
	log    zerolog.Logger
}

// NewGateway creates a Gateway for the sandbox or production environment.
func NewGateway(serverKey string, production bool, owners OrderOwners, log zerolog.Logger) *Gateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client coreapi.Client
	client.New(serverKey, env)
	return newGateway(&client, owners, log)
}

func newGateway(api coreAPI, owners OrderOwners, log zerolog.Logger) *Gateway {
	return &Gateway{
		api:    api,
		owners: owners,
		now:    time.Now,
		log:    log.With().Str("gateway", "midtrans").Logger(),
	}
}

// GetPayment returns the transaction for an order id, or nil if Midtrans does not know it.
func (g *Gateway) GetPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	var (
		resp *coreapi.TransactionStatusResponse
		merr *midtrans.Error
	)
	if err := withContext(ctx, func() {
		resp, merr = g.api.CheckTransaction(reference)
	}); err != nil {
		return nil, err
	}
	if merr != nil {
		if merr.GetStatusCode() == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("check transaction: %s", merr.GetMessage())
	}
	if resp == nil || resp.StatusCode == "404" {
		return nil, nil
	}

	payment, err := toPayment(reference, resp)
	if err != nil {
		return nil, err
	}

	owner, err := g.owners.OwnerOfOrder(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("resolve order owner: %w", err)
	}
	payment.CustomerID = owner
	return payment, nil
}

// VerifyOwnership reports whether userID placed the order.
func (g *Gateway) VerifyOwnership(payment *domain.Payment, userID uuid.UUID) bool {
	return payment != nil && payment.OwnedBy(userID)
}

// Refund returns the full gross amount. The refund key is derived from the
// order id so Midtrans rejects a second refund of the same payment.
func (g *Gateway) Refund(ctx context.Context, req domain.GatewayRefund) (*domain.RefundConfirmation, error) {
	// Midtrans settles in whole units of the transaction currency.
	major := decimal.New(req.Amount, -domain.CurrencyExponent(req.Currency))
	if !major.IsInteger() {
		g.log.Error().
			Str("order_id", req.Reference).
			Str("currency", req.Currency).
			Str("amount", major.String()).
			Msg("refund refused: amount has minor units")
		return nil, fmt.Errorf("refund %s %s: %w", major.String(), req.Currency, ErrFractionalAmount)
	}

	body := &coreapi.RefundReq{
		RefundKey: RefundKeyPrefix + req.Reference,
		Amount:    major.IntPart(),
		Reason:    req.Reason,
	}

	var (
		resp *coreapi.RefundResponse
		merr *midtrans.Error
	)
	if err := withContext(ctx, func() {
		resp, merr = g.api.RefundTransaction(req.Reference, body)
	}); err != nil {
		return nil, err
	}
	if merr != nil {
		return nil, fmt.Errorf("refund transaction: %s", merr.GetMessage())
	}
	if resp == nil {
		return nil, errors.New("refund transaction: empty response")
	}
	if !strings.HasPrefix(resp.StatusCode, "2") {
		return nil, fmt.Errorf("refund transaction: status %s: %s", resp.StatusCode, resp.StatusMessage)
	}

	g.log.Info().
		Str("order_id", req.Reference).
		Str("refund_key", body.RefundKey).
		Str("transaction_status", resp.TransactionStatus).
		Msg("refund accepted")

	return &domain.RefundConfirmation{
		Reference:   req.Reference,
		RefundKey:   body.RefundKey,
		Amount:      req.Amount,
		ConfirmedAt: g.now().UTC(),
	}, nil
}

func toPayment(reference string, resp *coreapi.TransactionStatusResponse) (*domain.Payment, error) {
	currency := resp.Currency
	if currency == "" {
		currency = "IDR"
	}

	gross, err := decimal.NewFromString(resp.GrossAmount)
	if err != nil {
		return nil, fmt.Errorf("parse gross_amount %q: %w", resp.GrossAmount, err)
	}

	createdAt, err := time.ParseInLocation(transactionTimeLayout, resp.TransactionTime, wib)
	if err != nil {
		return nil, fmt.Errorf("parse transaction_time %q: %w", resp.TransactionTime, err)
	}

	return &domain.Payment{
		Reference:  reference,
		Amount:     gross.Shift(domain.CurrencyExponent(currency)).IntPart(),
		Currency:   currency,
		CreatedAt:  createdAt.UTC(),
		Status:     resp.TransactionStatus,
		Refundable: refundableStatuses[resp.TransactionStatus],
	}, nil
}

// withContext runs a blocking SDK call and gives up when ctx ends.
// The SDK has no context support; an abandoned call finishes in the background.
func withContext(ctx context.Context, call func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		call()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
