package postgres

import (
	"context"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthCheck implements ports.HealthChecker for PostgreSQL.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks that the refund table is reachable, not just the server.
func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	_, err := h.pool.Exec(ctx, "SELECT 1 FROM refund_requests LIMIT 1")
	return err
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
