package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// NotifyHandler delivers queued notifications.
type NotifyHandler struct {
	delivery ports.NotificationDelivery
	log      zerolog.Logger
}

func NewNotifyHandler(delivery ports.NotificationDelivery, log zerolog.Logger) *NotifyHandler {
	return &NotifyHandler{delivery: delivery, log: log}
}

func (h *NotifyHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var n domain.Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		h.log.Error().Err(err).Msg("invalid notify payload")
		return fmt.Errorf("unmarshal notify payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.delivery.Deliver(ctx, n); err != nil {
		return fmt.Errorf("deliver %s notification: %w", n.Kind, err)
	}

	h.log.Info().
		Str("request_id", n.RequestID.String()).
		Str("kind", string(n.Kind)).
		Msg("notification delivered")
	return nil
}

// CancelSubscriptionHandler retries subscription cancellations that failed inline.
type CancelSubscriptionHandler struct {
	ledger ports.SubscriptionLedger
	log    zerolog.Logger
}

func NewCancelSubscriptionHandler(ledger ports.SubscriptionLedger, log zerolog.Logger) *CancelSubscriptionHandler {
	return &CancelSubscriptionHandler{ledger: ledger, log: log}
}

func (h *CancelSubscriptionHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p CancelPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.log.Error().Err(err).Msg("invalid cancel payload")
		return fmt.Errorf("unmarshal cancel payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.ledger.CancelSubscription(ctx, p.UserID); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	h.log.Info().
		Str("request_id", p.RequestID.String()).
		Str("user_id", p.UserID.String()).
		Msg("subscription cancelled on retry")
	return nil
}

// NewServeMux routes task types to their handlers.
func NewServeMux(notify *NotifyHandler, cancel *CancelSubscriptionHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotify, notify.ProcessTask)
	mux.HandleFunc(TypeCancelSubscription, cancel.ProcessTask)
	return mux
}
