package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubscriptionLedger implements ports.SubscriptionLedger over the subscriptions table.
type SubscriptionLedger struct {
	pool Pool
}

// NewSubscriptionLedger creates a new SubscriptionLedger.
func NewSubscriptionLedger(pool Pool) *SubscriptionLedger {
	return &SubscriptionLedger{pool: pool}
}

// CancelSubscription marks the user's active subscriptions as canceled.
// No active subscription is not an error, so retries are safe.
func (l *SubscriptionLedger) CancelSubscription(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE subscriptions SET status = 'canceled', canceled_at = now()
		WHERE user_id = $1 AND status = 'active'`

	if _, err := l.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

// OwnerOfOrder returns the user who placed a gateway order, or nil if the order is unknown.
func (l *SubscriptionLedger) OwnerOfOrder(ctx context.Context, orderID string) (*uuid.UUID, error) {
	query := `SELECT user_id FROM subscriptions WHERE gateway_order_id = $1`

	var userID uuid.UUID
	if err := l.pool.QueryRow(ctx, query, orderID).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order owner: %w", err)
	}
	return &userID, nil
}
