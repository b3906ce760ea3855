package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Refund Store ---

type inMemoryRefundStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.RefundRequest
}

func newInMemoryRefundStore() *inMemoryRefundStore {
	return &inMemoryRefundStore{requests: make(map[uuid.UUID]*domain.RefundRequest)}
}

func (s *inMemoryRefundStore) Create(_ context.Context, req *domain.RefundRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.PaymentReference == req.PaymentReference {
			return ports.ErrDuplicatePaymentReference
		}
	}
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *inMemoryRefundStore) GetByID(_ context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *inMemoryRefundStore) GetByPaymentReference(_ context.Context, reference string) (*domain.RefundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.PaymentReference == reference {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *inMemoryRefundStore) Resolve(_ context.Context, id uuid.UUID, res domain.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.Status != domain.RefundStatusPending {
		return ports.ErrRefundNotPending
	}
	processedAt := res.ProcessedAt
	processedBy := res.ProcessedBy
	r.Status = res.Status
	r.ProcessedAt = &processedAt
	r.ProcessedBy = &processedBy
	r.AdminNotes = res.AdminNotes
	return nil
}

func (s *inMemoryRefundStore) List(_ context.Context, filter ports.RefundListFilter) ([]domain.RefundRequest, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []domain.RefundRequest
	for _, r := range s.requests {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RequestDate.After(all[j].RequestDate) })

	total := int64(len(all))
	if filter.PageSize <= 0 {
		return all, total, nil
	}
	start := (filter.Page - 1) * filter.PageSize
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return []domain.RefundRequest{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *inMemoryRefundStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.RefundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RefundRequest
	for _, r := range s.requests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

// --- Fake Payment Gateway ---

type fakeGateway struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment
	delay    time.Duration
	refunds  atomic.Int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: make(map[string]domain.Payment)}
}

// addPayment registers a settled payment made by owner age ago.
func (g *fakeGateway) addPayment(reference string, owner uuid.UUID, amount int64, age time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[reference] = domain.Payment{
		Reference:  reference,
		Amount:     amount,
		Currency:   "IDR",
		CreatedAt:  time.Now().UTC().Add(-age),
		CustomerID: &owner,
		Status:     "settlement",
		Refundable: true,
	}
}

func (g *fakeGateway) GetPayment(_ context.Context, reference string) (*domain.Payment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.payments[reference]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (g *fakeGateway) statusOf(reference string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.payments[reference].Status
}

func (g *fakeGateway) VerifyOwnership(payment *domain.Payment, userID uuid.UUID) bool {
	return payment.OwnedBy(userID)
}

func (g *fakeGateway) Refund(ctx context.Context, req domain.GatewayRefund) (*domain.RefundConfirmation, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	g.mu.Lock()
	if p, ok := g.payments[req.Reference]; ok {
		p.Status = "refund"
		p.Refundable = false
		g.payments[req.Reference] = p
	}
	g.mu.Unlock()

	g.refunds.Add(1)
	return &domain.RefundConfirmation{
		Reference:   req.Reference,
		RefundKey:   "withdrawal-" + req.Reference,
		Amount:      req.Amount,
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

// --- Fake Subscription Ledger ---

type fakeLedger struct {
	mu        sync.Mutex
	cancelled map[uuid.UUID]int
	failNext  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{cancelled: make(map[uuid.UUID]int)}
}

func (l *fakeLedger) CancelSubscription(_ context.Context, userID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext {
		l.failNext = false
		return errors.New("ledger unavailable")
	}
	l.cancelled[userID]++
	return nil
}

func (l *fakeLedger) cancellations(userID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancelled[userID]
}

// --- Recording Notifier / Scheduler ---

type recordingOutbox struct {
	mu            sync.Mutex
	notifications []domain.Notification
	retries       []uuid.UUID
}

func (o *recordingOutbox) Notify(_ context.Context, n domain.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notifications = append(o.notifications, n)
	return nil
}

func (o *recordingOutbox) ScheduleCancellation(_ context.Context, userID, _ uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries = append(o.retries, userID)
	return nil
}

func (o *recordingOutbox) kinds() []domain.NotificationKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(o.notifications))
	for _, n := range o.notifications {
		out = append(out, n.Kind)
	}
	return out
}

func (o *recordingOutbox) scheduled() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.retries)
}

// --- In-Memory Profile Directory ---

type inMemoryProfiles struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]domain.Role
	names map[uuid.UUID]string
}

func newInMemoryProfiles() *inMemoryProfiles {
	return &inMemoryProfiles{
		roles: make(map[uuid.UUID]domain.Role),
		names: make(map[uuid.UUID]string),
	}
}

func (p *inMemoryProfiles) add(userID uuid.UUID, name string, role domain.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roles[userID] = role
	p.names[userID] = name
}

func (p *inMemoryProfiles) RoleOf(_ context.Context, userID uuid.UUID) (domain.Role, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if role, ok := p.roles[userID]; ok {
		return role, nil
	}
	return domain.RoleUser, nil
}

func (p *inMemoryProfiles) DisplayNames(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[uuid.UUID]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := p.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (p *inMemoryProfiles) ContactOf(_ context.Context, userID uuid.UUID) (*domain.Contact, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[userID]
	if !ok {
		return nil, nil
	}
	return &domain.Contact{UserID: userID, DisplayName: name, Email: userID.String() + "@example.com"}, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

func (r *inMemoryAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
