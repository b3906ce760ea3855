package ports

import (
	"context"
	"errors"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

var (
	// ErrDuplicatePaymentReference is returned by RefundRequestStore.Create when a
	// request for the same payment reference already exists.
	ErrDuplicatePaymentReference = errors.New("refund request for payment reference already exists")

	// ErrRefundNotPending is returned by RefundRequestStore.Resolve when the request
	// left the pending state before the write landed.
	ErrRefundNotPending = errors.New("refund request is no longer pending")
)

// RefundRequestStore defines persistence operations for refund requests.
// Get methods return nil, nil when nothing matches.
type RefundRequestStore interface {
	Create(ctx context.Context, req *domain.RefundRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.RefundRequest, error)
	// Resolve moves a pending request to a terminal status. It is a compare-and-set
	// on status = pending and returns ErrRefundNotPending when it lost the race.
	Resolve(ctx context.Context, id uuid.UUID, res domain.Resolution) error
	// List returns requests newest first.
	List(ctx context.Context, filter RefundListFilter) ([]domain.RefundRequest, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.RefundRequest, error)
}

// RefundListFilter holds filter + pagination for listing refund requests.
// PageSize <= 0 returns every match.
type RefundListFilter struct {
	Status   *domain.RefundStatus
	Page     int
	PageSize int
}

// RoleDirectory resolves a user's role.
type RoleDirectory interface {
	// RoleOf returns RoleUser for unknown users.
	RoleOf(ctx context.Context, userID uuid.UUID) (domain.Role, error)
}

// ProfileDirectory is a read-only view over user profiles.
type ProfileDirectory interface {
	// DisplayNames returns names keyed by user id; users without a profile are absent.
	DisplayNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
	// ContactOf returns nil, nil when the user has no profile.
	ContactOf(ctx context.Context, userID uuid.UUID) (*domain.Contact, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
