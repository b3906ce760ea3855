package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"
	"refund-service/pkg/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "refund-service/internal/service"

// Message keys returned to clients for localisation.
const (
	MessageKeyAutoRefunded  = "refund.auto_refunded"
	MessageKeyPendingReview = "refund.pending_review"
)

const (
	messageAutoRefunded  = "Your refund has been processed. The amount will be returned to your original payment method."
	messagePendingReview = "Your withdrawal request has been submitted and will be reviewed by our team."

	maxReferenceLength = 255
	maxTextLength      = 2000
)

// RefundPolicy holds the tunables of the withdrawal workflow.
type RefundPolicy struct {
	PeriodDays     int
	GatewayTimeout time.Duration
	LockTTL        time.Duration
}

// RefundWorkflowImpl implements ports.RefundWorkflow.
type RefundWorkflowImpl struct {
	store    ports.RefundRequestStore
	gateway  ports.PaymentGateway
	ledger   ports.SubscriptionLedger
	notifier ports.Notifier
	retries  ports.CompensationScheduler
	locker   ports.RefundLocker
	profiles ports.ProfileDirectory
	auth     ports.Authorizer
	policy   RefundPolicy
	tracer   trace.Tracer
	warnings metric.Int64Counter
	now      func() time.Time
	log      zerolog.Logger
}

// NewRefundWorkflow creates a new RefundWorkflowImpl.
func NewRefundWorkflow(
	store ports.RefundRequestStore,
	gateway ports.PaymentGateway,
	ledger ports.SubscriptionLedger,
	notifier ports.Notifier,
	retries ports.CompensationScheduler,
	locker ports.RefundLocker,
	profiles ports.ProfileDirectory,
	auth ports.Authorizer,
	policy RefundPolicy,
	log zerolog.Logger,
) *RefundWorkflowImpl {
	if policy.PeriodDays <= 0 {
		policy.PeriodDays = domain.DefaultWithdrawalPeriodDays
	}
	if policy.GatewayTimeout <= 0 {
		policy.GatewayTimeout = 15 * time.Second
	}
	if policy.LockTTL <= policy.GatewayTimeout {
		policy.LockTTL = 2 * time.Minute
	}

	warnings, err := otel.Meter(instrumentationName).Int64Counter(
		"refund_compensation_warnings_total",
		metric.WithDescription("Post-refund steps that failed and need follow-up"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("compensation warning counter unavailable")
		warnings = noop.Int64Counter{}
	}

	return &RefundWorkflowImpl{
		store:    store,
		gateway:  gateway,
		ledger:   ledger,
		notifier: notifier,
		retries:  retries,
		locker:   locker,
		profiles: profiles,
		auth:     auth,
		policy:   policy,
		tracer:   otel.Tracer(instrumentationName),
		warnings: warnings,
		now:      time.Now,
		log:      log,
	}
}

// RequestRefund files a withdrawal for one payment. Payments still inside the
// withdrawal period are refunded immediately; older ones wait for an admin.
func (w *RefundWorkflowImpl) RequestRefund(ctx context.Context, cmd ports.RefundCommand) (out *ports.RefundOutcome, err error) {
	cmd.PaymentReference = strings.TrimSpace(cmd.PaymentReference)
	cmd.Reason = trimmed(cmd.Reason)

	ctx, span := w.tracer.Start(ctx, "RefundWorkflow.RequestRefund",
		trace.WithAttributes(attribute.String("refund.payment_reference", cmd.PaymentReference)))
	defer func() { endSpan(span, err) }()

	if err := validateRefundCommand(cmd); err != nil {
		return nil, err
	}

	payment, err := w.lookupPayment(ctx, cmd.PaymentReference)
	if err != nil {
		return nil, err
	}

	if !w.gateway.VerifyOwnership(payment, cmd.UserID) {
		w.log.Warn().
			Str("user_id", cmd.UserID.String()).
			Str("payment_reference", cmd.PaymentReference).
			Msg("refund requested for a payment owned by someone else")
		return nil, apperror.ErrNotAuthorized()
	}

	release, err := w.claim(ctx, cmd.PaymentReference)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := w.store.GetByPaymentReference(ctx, cmd.PaymentReference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing request: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateRequest(string(existing.Status))
	}
	// A refunded payment is no longer refundable at the gateway, so this
	// check only runs once the stored request has been ruled out.
	if !payment.Refundable {
		return nil, apperror.ErrPaymentNotRefundable(payment.Status)
	}

	now := w.now().UTC()
	eligibility := domain.EvaluateEligibility(payment.CreatedAt, now, w.policy.PeriodDays)
	span.SetAttributes(
		attribute.Int("refund.days_elapsed", eligibility.DaysElapsed),
		attribute.Bool("refund.within_period", eligibility.WithinPeriod),
	)

	req := &domain.RefundRequest{
		ID:               uuid.New(),
		UserID:           cmd.UserID,
		PaymentReference: cmd.PaymentReference,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Reason:           cmd.Reason,
		PaymentDate:      payment.CreatedAt,
		RequestDate:      now,
		IsWithinPeriod:   eligibility.WithinPeriod,
	}

	if eligibility.WithinPeriod {
		return w.autoRefund(ctx, req)
	}
	return w.submitForReview(ctx, req)
}

func (w *RefundWorkflowImpl) autoRefund(ctx context.Context, req *domain.RefundRequest) (*ports.RefundOutcome, error) {
	confirmation, err := w.executeRefund(ctx, req)
	if err != nil {
		return nil, err
	}

	// Money has moved; finish the bookkeeping even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	processedAt := req.RequestDate
	req.Status = domain.RefundStatusAutoRefunded
	req.ProcessedAt = &processedAt

	if err := w.store.Create(ctx, req); err != nil {
		w.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Str("payment_reference", req.PaymentReference).
			Str("refund_key", confirmation.RefundKey).
			Msg("refund executed at gateway but request was not recorded")
		if errors.Is(err, ports.ErrDuplicatePaymentReference) {
			return nil, w.duplicateError(ctx, req.PaymentReference)
		}
		return nil, apperror.InternalError(fmt.Errorf("record auto refund: %w", err))
	}

	warnings := w.followUp(ctx, req, domain.NotificationAutoRefunded, true)

	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("payment_reference", req.PaymentReference).
		Int64("amount", req.Amount).
		Int("warnings", len(warnings)).
		Msg("refund processed automatically")

	return &ports.RefundOutcome{
		Success:      true,
		AutoRefunded: true,
		MessageKey:   MessageKeyAutoRefunded,
		Message:      messageAutoRefunded,
		Request:      req,
		Warnings:     warnings,
	}, nil
}

func (w *RefundWorkflowImpl) submitForReview(ctx context.Context, req *domain.RefundRequest) (*ports.RefundOutcome, error) {
	req.Status = domain.RefundStatusPending

	if err := w.store.Create(ctx, req); err != nil {
		if errors.Is(err, ports.ErrDuplicatePaymentReference) {
			return nil, w.duplicateError(ctx, req.PaymentReference)
		}
		return nil, apperror.InternalError(fmt.Errorf("record pending request: %w", err))
	}

	warnings := w.followUp(ctx, req, domain.NotificationPending, false)

	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("payment_reference", req.PaymentReference).
		Msg("refund request queued for review")

	return &ports.RefundOutcome{
		Success:      true,
		AutoRefunded: false,
		MessageKey:   MessageKeyPendingReview,
		Message:      messagePendingReview,
		Request:      req,
		Warnings:     warnings,
	}, nil
}

// ListRequests returns refund requests for the admin dashboard.
func (w *RefundWorkflowImpl) ListRequests(ctx context.Context, caller ports.Caller, filter ports.RefundListFilter) (views []ports.RefundView, total int64, err error) {
	ctx, span := w.tracer.Start(ctx, "RefundWorkflow.ListRequests")
	defer func() { endSpan(span, err) }()

	if err := w.auth.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, apperror.Validation(fmt.Sprintf("unknown status %q", *filter.Status))
	}

	reqs, total, err := w.store.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list refund requests: %w", err))
	}

	names := w.displayNames(ctx, reqs)
	views = make([]ports.RefundView, 0, len(reqs))
	for _, r := range reqs {
		view := ports.RefundView{RefundRequest: r}
		if name, ok := names[r.UserID]; ok {
			view.DisplayName = &name
		}
		views = append(views, view)
	}
	return views, total, nil
}

// ResolveRequest applies an admin decision to a pending request.
// Approval executes the gateway refund before the status changes.
func (w *RefundWorkflowImpl) ResolveRequest(ctx context.Context, caller ports.Caller, cmd ports.ResolveCommand) (out *ports.ResolveOutcome, err error) {
	ctx, span := w.tracer.Start(ctx, "RefundWorkflow.ResolveRequest",
		trace.WithAttributes(
			attribute.String("refund.request_id", cmd.RequestID.String()),
			attribute.Bool("refund.approve", cmd.Approve),
		))
	defer func() { endSpan(span, err) }()

	if err := w.auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	notes := trimmed(cmd.AdminNotes)
	req, err := w.loadPending(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if err := validateAdminNotes(notes, !cmd.Approve); err != nil {
		return nil, err
	}

	release, err := w.claim(ctx, req.PaymentReference)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock; another admin may have decided in the meantime.
	req, err = w.loadPending(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}

	if cmd.Approve {
		return w.approve(ctx, caller, req, notes)
	}
	return w.reject(ctx, caller, req, notes)
}

func (w *RefundWorkflowImpl) approve(ctx context.Context, caller ports.Caller, req *domain.RefundRequest, notes *string) (*ports.ResolveOutcome, error) {
	confirmation, err := w.executeRefund(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	res := domain.Resolution{
		Status:      domain.RefundStatusApproved,
		ProcessedAt: w.now().UTC(),
		ProcessedBy: caller.UserID,
		AdminNotes:  notes,
	}
	if err := w.store.Resolve(ctx, req.ID, res); err != nil {
		w.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Str("payment_reference", req.PaymentReference).
			Str("refund_key", confirmation.RefundKey).
			Msg("refund executed at gateway but approval was not recorded")
		return nil, w.resolveError(ctx, req.ID, err)
	}
	applyResolution(req, res)

	warnings := w.followUp(ctx, req, domain.NotificationApproved, true)

	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("admin_id", caller.UserID.String()).
		Str("payment_reference", req.PaymentReference).
		Int64("amount", req.Amount).
		Int("warnings", len(warnings)).
		Msg("refund request approved")

	return &ports.ResolveOutcome{Request: req, Warnings: warnings}, nil
}

func (w *RefundWorkflowImpl) reject(ctx context.Context, caller ports.Caller, req *domain.RefundRequest, notes *string) (*ports.ResolveOutcome, error) {
	res := domain.Resolution{
		Status:      domain.RefundStatusRejected,
		ProcessedAt: w.now().UTC(),
		ProcessedBy: caller.UserID,
		AdminNotes:  notes,
	}
	if err := w.store.Resolve(ctx, req.ID, res); err != nil {
		return nil, w.resolveError(ctx, req.ID, err)
	}
	applyResolution(req, res)

	warnings := w.followUp(ctx, req, domain.NotificationRejected, false)

	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("admin_id", caller.UserID.String()).
		Str("payment_reference", req.PaymentReference).
		Msg("refund request rejected")

	return &ports.ResolveOutcome{Request: req, Warnings: warnings}, nil
}

// ListOwnRequests returns the caller's own refund history.
func (w *RefundWorkflowImpl) ListOwnRequests(ctx context.Context, userID uuid.UUID) ([]domain.RefundRequest, error) {
	reqs, err := w.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list own requests: %w", err))
	}
	return reqs, nil
}

func (w *RefundWorkflowImpl) lookupPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	gctx, cancel := context.WithTimeout(ctx, w.policy.GatewayTimeout)
	defer cancel()

	payment, err := w.gateway.GetPayment(gctx, reference)
	if err != nil {
		w.log.Error().Err(err).Str("payment_reference", reference).Msg("payment lookup failed")
		return nil, apperror.ErrGateway(err)
	}
	if payment == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	return payment, nil
}

func (w *RefundWorkflowImpl) executeRefund(ctx context.Context, req *domain.RefundRequest) (*domain.RefundConfirmation, error) {
	gctx, cancel := context.WithTimeout(ctx, w.policy.GatewayTimeout)
	defer cancel()

	reason := "Statutory withdrawal"
	if req.Reason != nil {
		reason = *req.Reason
	}

	confirmation, err := w.gateway.Refund(gctx, domain.GatewayRefund{
		Reference: req.PaymentReference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reason:    reason,
	})
	if err != nil {
		w.log.Error().Err(err).
			Str("request_id", req.ID.String()).
			Str("payment_reference", req.PaymentReference).
			Msg("gateway refund failed")
		return nil, apperror.ErrGateway(err)
	}
	if confirmation == nil {
		confirmation = &domain.RefundConfirmation{Reference: req.PaymentReference, Amount: req.Amount}
	}
	return confirmation, nil
}

// claim takes the per-payment lock. The returned func releases it.
func (w *RefundWorkflowImpl) claim(ctx context.Context, reference string) (func(), error) {
	token, ok, err := w.locker.Acquire(ctx, reference, w.policy.LockTTL)
	if err != nil {
		w.log.Error().Err(err).Str("payment_reference", reference).Msg("refund lock unavailable")
		return nil, apperror.ErrLockUnavailable(err)
	}
	if !ok {
		return nil, apperror.ErrRefundInProgress()
	}
	return func() {
		if err := w.locker.Release(context.WithoutCancel(ctx), reference, token); err != nil {
			w.log.Warn().Err(err).Str("payment_reference", reference).Msg("failed to release refund lock")
		}
	}, nil
}

func (w *RefundWorkflowImpl) loadPending(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	req, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load refund request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrNotFound("refund request")
	}
	if req.Status != domain.RefundStatusPending {
		return nil, apperror.ErrAlreadyResolved(string(req.Status))
	}
	return req, nil
}

// followUp runs the best-effort steps after a request is recorded.
// Failures become warnings; they never undo the recorded outcome.
func (w *RefundWorkflowImpl) followUp(ctx context.Context, req *domain.RefundRequest, kind domain.NotificationKind, cancelSubscription bool) []domain.CompensationWarning {
	warnings := []domain.CompensationWarning{}

	if cancelSubscription {
		if err := w.ledger.CancelSubscription(ctx, req.UserID); err != nil {
			warnings = append(warnings, w.warn(ctx, req, domain.StepCancelSubscription, err,
				"Subscription cancellation will be retried"))
			if err := w.retries.ScheduleCancellation(ctx, req.UserID, req.ID); err != nil {
				w.log.Error().Err(err).
					Str("request_id", req.ID.String()).
					Str("user_id", req.UserID.String()).
					Msg("could not schedule subscription cancellation retry; manual reconciliation required")
			}
		}
	}

	if err := w.notifier.Notify(ctx, domain.NewNotification(kind, req)); err != nil {
		warnings = append(warnings, w.warn(ctx, req, domain.StepNotify, err,
			"Notification could not be sent"))
	}

	return warnings
}

func (w *RefundWorkflowImpl) warn(ctx context.Context, req *domain.RefundRequest, step domain.CompensationStep, err error, message string) domain.CompensationWarning {
	w.log.Warn().Err(err).
		Bool("compensation_warning", true).
		Str("step", string(step)).
		Str("request_id", req.ID.String()).
		Str("payment_reference", req.PaymentReference).
		Msg("post-refund step failed")
	w.warnings.Add(ctx, 1, metric.WithAttributes(attribute.String("step", string(step))))
	return domain.CompensationWarning{Step: step, Message: message}
}

func (w *RefundWorkflowImpl) duplicateError(ctx context.Context, reference string) error {
	existing, err := w.store.GetByPaymentReference(ctx, reference)
	if err != nil || existing == nil {
		return apperror.ErrDuplicateRequest("")
	}
	return apperror.ErrDuplicateRequest(string(existing.Status))
}

func (w *RefundWorkflowImpl) resolveError(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, ports.ErrRefundNotPending) {
		return apperror.InternalError(fmt.Errorf("resolve refund request: %w", err))
	}
	current, lerr := w.store.GetByID(ctx, id)
	if lerr != nil || current == nil {
		return apperror.ErrAlreadyResolved("")
	}
	return apperror.ErrAlreadyResolved(string(current.Status))
}

// displayNames is best-effort; the list is still useful without names.
func (w *RefundWorkflowImpl) displayNames(ctx context.Context, reqs []domain.RefundRequest) map[uuid.UUID]string {
	if len(reqs) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}

	names, err := w.profiles.DisplayNames(ctx, ids)
	if err != nil {
		w.log.Warn().Err(err).Int("users", len(ids)).Msg("display name lookup failed")
		return nil
	}
	return names
}

func validateRefundCommand(cmd ports.RefundCommand) error {
	if cmd.UserID == uuid.Nil {
		return apperror.Validation("user id is required")
	}
	err := validation.ValidateStruct(&cmd,
		validation.Field(&cmd.PaymentReference,
			validation.Required.Error("payment reference is required"),
			validation.RuneLength(1, maxReferenceLength),
		),
		validation.Field(&cmd.Reason, validation.RuneLength(0, maxTextLength)),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func validateAdminNotes(notes *string, required bool) error {
	rules := []validation.Rule{validation.RuneLength(0, maxTextLength)}
	if required {
		rules = append(rules, validation.Required.Error("admin notes are required when rejecting"))
	}
	if err := validation.Validate(notes, rules...); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func applyResolution(req *domain.RefundRequest, res domain.Resolution) {
	processedAt := res.ProcessedAt
	processedBy := res.ProcessedBy
	req.Status = res.Status
	req.ProcessedAt = &processedAt
	req.ProcessedBy = &processedBy
	req.AdminNotes = res.AdminNotes
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
