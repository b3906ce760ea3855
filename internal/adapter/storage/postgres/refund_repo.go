package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const refundColumns = `id, user_id, payment_reference, amount, currency, reason, status,
		payment_date, request_date, is_within_period, processed_at, processed_by, admin_notes`

// RefundRepo implements ports.RefundRequestStore.
type RefundRepo struct {
	pool Pool
}

// NewRefundRepo creates a new RefundRepo.
func NewRefundRepo(pool Pool) *RefundRepo {
	return &RefundRepo{pool: pool}
}

// Create inserts a new refund request. The payment_reference UNIQUE constraint
// turns a concurrent second insert into ports.ErrDuplicatePaymentReference.
func (r *RefundRepo) Create(ctx context.Context, req *domain.RefundRequest) error {
	query := `INSERT INTO refund_requests (` + refundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.UserID, req.PaymentReference, req.Amount, req.Currency, req.Reason, req.Status,
		req.PaymentDate, req.RequestDate, req.IsWithinPeriod, req.ProcessedAt, req.ProcessedBy, req.AdminNotes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ports.ErrDuplicatePaymentReference
		}
		return fmt.Errorf("insert refund request: %w", err)
	}
	return nil
}

// GetByID fetches a refund request by UUID.
func (r *RefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`
	return r.scanRefund(r.pool.QueryRow(ctx, query, id))
}

// GetByPaymentReference fetches the refund request for a gateway payment.
func (r *RefundRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE payment_reference = $1`
	return r.scanRefund(r.pool.QueryRow(ctx, query, reference))
}

// Resolve writes an admin decision onto a pending request.
func (r *RefundRepo) Resolve(ctx context.Context, id uuid.UUID, res domain.Resolution) error {
	query := `UPDATE refund_requests
		SET status = $1, processed_at = $2, processed_by = $3, admin_notes = $4
		WHERE id = $5 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query, res.Status, res.ProcessedAt, res.ProcessedBy, res.AdminNotes, id)
	if err != nil {
		return fmt.Errorf("resolve refund request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrRefundNotPending
	}
	return nil
}

// List fetches refund requests newest first with optional status filter and pagination.
func (r *RefundRepo) List(ctx context.Context, filter ports.RefundListFilter) ([]domain.RefundRequest, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM refund_requests %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count refund requests: %w", err)
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM refund_requests %s ORDER BY request_date DESC, id`, refundColumns, where)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		dataQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	reqs, err := r.queryRefunds(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// ListByUser fetches one user's refund requests newest first.
func (r *RefundRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE user_id = $1 ORDER BY request_date DESC, id`
	return r.queryRefunds(ctx, query, userID)
}

func (r *RefundRepo) queryRefunds(ctx context.Context, query string, args ...any) ([]domain.RefundRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list refund requests: %w", err)
	}
	defer rows.Close()

	reqs := []domain.RefundRequest{}
	for rows.Next() {
		var req domain.RefundRequest
		if err := rows.Scan(refundDest(&req)...); err != nil {
			return nil, fmt.Errorf("scan refund request row: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refund request rows: %w", err)
	}
	return reqs, nil
}

// scanRefund is a helper to scan a single row into a RefundRequest.
func (r *RefundRepo) scanRefund(row pgx.Row) (*domain.RefundRequest, error) {
	req := &domain.RefundRequest{}
	if err := row.Scan(refundDest(req)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan refund request: %w", err)
	}
	return req, nil
}

func refundDest(req *domain.RefundRequest) []any {
	return []any{
		&req.ID, &req.UserID, &req.PaymentReference, &req.Amount, &req.Currency, &req.Reason, &req.Status,
		&req.PaymentDate, &req.RequestDate, &req.IsWithinPeriod, &req.ProcessedAt, &req.ProcessedBy, &req.AdminNotes,
	}
}
