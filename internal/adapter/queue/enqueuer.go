package queue

import (
	"context"
	"errors"
	"fmt"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// taskEnqueuer is satisfied by *asynq.Client.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RetryPolicy sets how often each task type is retried before it is archived.
type RetryPolicy struct {
	NotifyMaxRetry int
	CancelMaxRetry int
}

// Enqueuer implements ports.Notifier and ports.CompensationScheduler by
// handing work to the asynq worker.
type Enqueuer struct {
	client taskEnqueuer
	retry  RetryPolicy
	log    zerolog.Logger
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(client taskEnqueuer, retry RetryPolicy, log zerolog.Logger) *Enqueuer {
	return &Enqueuer{client: client, retry: retry, log: log}
}

// Notify queues a notification for delivery.
func (e *Enqueuer) Notify(ctx context.Context, n domain.Notification) error {
	task, err := NewNotifyTask(n)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task,
		asynq.TaskID(notifyTaskID(n)),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(e.retry.NotifyMaxRetry),
	)
}

// ScheduleCancellation queues a retry of a failed subscription cancellation.
func (e *Enqueuer) ScheduleCancellation(ctx context.Context, userID, requestID uuid.UUID) error {
	task, err := NewCancelSubscriptionTask(userID, requestID)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task,
		asynq.TaskID(cancelTaskID(requestID)),
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(e.retry.CancelMaxRetry),
	)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		e.log.Debug().Str("type", task.Type()).Msg("task already queued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	e.log.Debug().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}
