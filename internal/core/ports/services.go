package ports

import (
	"context"
	"time"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// Caller identifies who invokes an operation.
type Caller struct {
	UserID uuid.UUID
	Role   domain.Role
}

// Authorizer gates admin-only operations.
type Authorizer interface {
	CallerFor(ctx context.Context, userID uuid.UUID) (Caller, error)
	RequireAdmin(caller Caller) error
}

// RefundWorkflow defines the withdrawal workflow.
type RefundWorkflow interface {
	RequestRefund(ctx context.Context, cmd RefundCommand) (*RefundOutcome, error)
	ListRequests(ctx context.Context, caller Caller, filter RefundListFilter) ([]RefundView, int64, error)
	ResolveRequest(ctx context.Context, caller Caller, cmd ResolveCommand) (*ResolveOutcome, error)
	ListOwnRequests(ctx context.Context, userID uuid.UUID) ([]domain.RefundRequest, error)
}

// RefundCommand holds input for a user's refund request.
type RefundCommand struct {
	UserID           uuid.UUID
	PaymentReference string
	Reason           *string
}

// RefundOutcome is the result returned to the requesting user.
type RefundOutcome struct {
	Success      bool
	AutoRefunded bool
	MessageKey   string
	Message      string
	Request      *domain.RefundRequest
	Warnings     []domain.CompensationWarning
}

// ResolveCommand holds an admin decision on a pending request.
type ResolveCommand struct {
	RequestID  uuid.UUID
	Approve    bool
	AdminNotes *string
}

// ResolveOutcome is the result returned to the resolving admin.
type ResolveOutcome struct {
	Request  *domain.RefundRequest
	Warnings []domain.CompensationWarning
}

// RefundView is a request annotated with the requester's display name.
type RefundView struct {
	domain.RefundRequest
	DisplayName *string `json:"display_name,omitempty"`
}

// NotificationDelivery renders and sends a notification to its recipient.
type NotificationDelivery interface {
	Deliver(ctx context.Context, n domain.Notification) error
}
