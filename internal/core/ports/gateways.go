package ports

import (
	"context"
	"time"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=gateways.go -destination=mocks/mock_gateways.go -package=mocks

// PaymentGateway is the external payment provider. Calls are not retried here.
type PaymentGateway interface {
	// GetPayment returns nil, nil when the gateway does not know the reference.
	GetPayment(ctx context.Context, reference string) (*domain.Payment, error)
	VerifyOwnership(payment *domain.Payment, userID uuid.UUID) bool
	Refund(ctx context.Context, req domain.GatewayRefund) (*domain.RefundConfirmation, error)
}

// SubscriptionLedger owns the user's subscription state.
type SubscriptionLedger interface {
	// CancelSubscription is idempotent: a user without an active subscription is a no-op.
	CancelSubscription(ctx context.Context, userID uuid.UUID) error
}

// Notifier hands a status message to the delivery pipeline.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// CompensationScheduler retries failed post-refund side effects out of band.
type CompensationScheduler interface {
	ScheduleCancellation(ctx context.Context, userID, requestID uuid.UUID) error
}

// RefundLocker serializes refund operations on one payment reference across replicas.
type RefundLocker interface {
	// Acquire returns an owner token and true if the lock was taken, or "" and false
	// if another holder has it.
	Acquire(ctx context.Context, reference string, ttl time.Duration) (string, bool, error)
	// Release frees the lock only if token still owns it.
	Release(ctx context.Context, reference, token string) error
}

// Mailer sends a single e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// EventPublisher publishes a domain event onto the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
