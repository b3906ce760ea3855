package queue

import (
	"context"
	"errors"
	"io"
	"testing"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNotifyHandler_ProcessTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	delivery := mocks.NewMockNotificationDelivery(ctrl)
	h := NewNotifyHandler(delivery, zerolog.New(io.Discard))

	n := domain.Notification{Kind: domain.NotificationApproved, UserID: uuid.New(), RequestID: uuid.New(), Amount: 10}
	task, err := NewNotifyTask(n)
	require.NoError(t, err)

	delivery.EXPECT().Deliver(gomock.Any(), n).Return(nil)
	assert.NoError(t, h.ProcessTask(context.Background(), task))
}

func TestNotifyHandler_DeliveryErrorRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	delivery := mocks.NewMockNotificationDelivery(ctrl)
	h := NewNotifyHandler(delivery, zerolog.New(io.Discard))
	task, err := NewNotifyTask(domain.Notification{Kind: domain.NotificationPending})
	require.NoError(t, err)

	delivery.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNotifyHandler_BadPayloadSkipsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewNotifyHandler(mocks.NewMockNotificationDelivery(ctrl), zerolog.New(io.Discard))
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeNotify, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCancelSubscriptionHandler_ProcessTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockSubscriptionLedger(ctrl)
	h := NewCancelSubscriptionHandler(ledger, zerolog.New(io.Discard))
	userID := uuid.New()
	task, err := NewCancelSubscriptionTask(userID, uuid.New())
	require.NoError(t, err)

	gomock.InOrder(
		ledger.EXPECT().CancelSubscription(gomock.Any(), userID).Return(errors.New("timeout")),
		ledger.EXPECT().CancelSubscription(gomock.Any(), userID).Return(nil),
	)
	assert.Error(t, h.ProcessTask(context.Background(), task))
	assert.NoError(t, h.ProcessTask(context.Background(), task))
}

func TestCancelSubscriptionHandler_BadPayloadSkipsRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewCancelSubscriptionHandler(mocks.NewMockSubscriptionLedger(ctrl), zerolog.New(io.Discard))
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeCancelSubscription, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewServeMux_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockSubscriptionLedger(ctrl)
	mux := NewServeMux(
		NewNotifyHandler(mocks.NewMockNotificationDelivery(ctrl), zerolog.New(io.Discard)),
		NewCancelSubscriptionHandler(ledger, zerolog.New(io.Discard)),
	)

	userID := uuid.New()
	task, err := NewCancelSubscriptionTask(userID, uuid.New())
	require.NoError(t, err)

	ledger.EXPECT().CancelSubscription(gomock.Any(), userID).Return(nil)
	assert.NoError(t, mux.ProcessTask(context.Background(), task))
}
