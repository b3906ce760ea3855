package queue

import (
	"encoding/json"
	"fmt"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types.
const (
	TypeNotify             = "refund:notify"
	TypeCancelSubscription = "refund:cancel_subscription"
)

// Queue names and their relative priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues is the priority map for the worker server.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
}

// CancelPayload identifies a subscription cancellation to retry.
type CancelPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	RequestID uuid.UUID `json:"request_id"`
}

// NewNotifyTask builds a notification delivery task.
func NewNotifyTask(n domain.Notification) (*asynq.Task, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return asynq.NewTask(TypeNotify, data), nil
}

// NewCancelSubscriptionTask builds a subscription cancellation retry task.
func NewCancelSubscriptionTask(userID, requestID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(CancelPayload{UserID: userID, RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshal cancel payload: %w", err)
	}
	return asynq.NewTask(TypeCancelSubscription, data), nil
}

func notifyTaskID(n domain.Notification) string {
	return "notify:" + n.DedupKey()
}

func cancelTaskID(requestID uuid.UUID) string {
	return "cancel:" + requestID.String()
}
