package service

import (
	"context"
	"fmt"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"
	"refund-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthorizationGate implements ports.Authorizer on top of the role directory.
type AuthorizationGate struct {
	roles ports.RoleDirectory
	log   zerolog.Logger
}

// NewAuthorizationGate creates a new AuthorizationGate.
func NewAuthorizationGate(roles ports.RoleDirectory, log zerolog.Logger) *AuthorizationGate {
	return &AuthorizationGate{roles: roles, log: log}
}

// CallerFor resolves the caller's role.
func (g *AuthorizationGate) CallerFor(ctx context.Context, userID uuid.UUID) (ports.Caller, error) {
	role, err := g.roles.RoleOf(ctx, userID)
	if err != nil {
		return ports.Caller{}, apperror.InternalError(fmt.Errorf("resolve role: %w", err))
	}
	if role == "" {
		role = domain.RoleUser
	}
	return ports.Caller{UserID: userID, Role: role}, nil
}

// RequireAdmin rejects callers that are neither admin nor owner.
func (g *AuthorizationGate) RequireAdmin(caller ports.Caller) error {
	if !caller.Role.CanResolveRefunds() {
		g.log.Warn().
			Str("user_id", caller.UserID.String()).
			Str("role", string(caller.Role)).
			Msg("admin operation denied")
		return apperror.ErrForbidden()
	}
	return nil
}
