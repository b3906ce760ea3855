package postgres

import (
	"context"
	"errors"
	"fmt"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.RoleDirectory and ports.ProfileDirectory.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// RoleOf returns the user's role, defaulting to RoleUser when no profile exists.
func (r *ProfileRepo) RoleOf(ctx context.Context, userID uuid.UUID) (domain.Role, error) {
	query := `SELECT role FROM profiles WHERE user_id = $1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoleUser, nil
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// DisplayNames fetches display names for a set of users.
func (r *ProfileRepo) DisplayNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	query := `SELECT user_id, display_name FROM profiles WHERE user_id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list display names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan display name row: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate display name rows: %w", err)
	}
	return names, nil
}

// ContactOf fetches the user's e-mail and display name.
func (r *ProfileRepo) ContactOf(ctx context.Context, userID uuid.UUID) (*domain.Contact, error) {
	query := `SELECT user_id, email, display_name FROM profiles WHERE user_id = $1`

	c := &domain.Contact{}
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&c.UserID, &c.Email, &c.DisplayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}
