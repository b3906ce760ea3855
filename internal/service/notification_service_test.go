package service

import (
	"context"
	"errors"
	"testing"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testNotification(kind domain.NotificationKind) domain.Notification {
	return domain.Notification{
		Kind:             kind,
		UserID:           uuid.New(),
		RequestID:        uuid.New(),
		PaymentReference: testRef,
		Amount:           149000,
		Currency:         "IDR",
	}
}

func TestNotificationService_Deliver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	profiles := mocks.NewMockProfileDirectory(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)
	svc := NewNotificationService(profiles, mailer, events, newTestLogger())

	n := testNotification(domain.NotificationAutoRefunded)

	gomock.InOrder(
		events.EXPECT().Publish(gomock.Any(), "REFUND_AUTO_REFUNDED", n).Return(nil),
		profiles.EXPECT().ContactOf(gomock.Any(), n.UserID).
			Return(&domain.Contact{UserID: n.UserID, Email: "budi@example.com", DisplayName: "Budi"}, nil),
		mailer.EXPECT().Send(gomock.Any(), "budi@example.com", "Your refund has been processed", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, body string) error {
				assert.Contains(t, body, "Hi Budi")
				assert.Contains(t, body, testRef)
				assert.Contains(t, body, "IDR 149000")
				return nil
			}),
	)

	require.NoError(t, svc.Deliver(context.Background(), n))
}

func TestNotificationService_Deliver_RejectedIncludesNotes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	profiles := mocks.NewMockProfileDirectory(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)
	svc := NewNotificationService(profiles, mailer, events, newTestLogger())

	notes := "Service was used <extensively>"
	n := testNotification(domain.NotificationRejected)
	n.AdminNotes = &notes

	events.EXPECT().Publish(gomock.Any(), "REFUND_REJECTED", gomock.Any()).Return(nil)
	profiles.EXPECT().ContactOf(gomock.Any(), n.UserID).Return(&domain.Contact{Email: "a@example.com"}, nil)
	mailer.EXPECT().Send(gomock.Any(), "a@example.com", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, body string) error {
			assert.Contains(t, body, "Hi there")
			assert.Contains(t, body, "Service was used &lt;extensively&gt;")
			return nil
		})

	require.NoError(t, svc.Deliver(context.Background(), n))
}

func TestNotificationService_Deliver_NoContactSkipsEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	profiles := mocks.NewMockProfileDirectory(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)
	svc := NewNotificationService(profiles, mocks.NewMockMailer(ctrl), events, newTestLogger())

	n := testNotification(domain.NotificationPending)
	events.EXPECT().Publish(gomock.Any(), "REFUND_PENDING", gomock.Any()).Return(nil)
	profiles.EXPECT().ContactOf(gomock.Any(), n.UserID).Return(nil, nil)

	require.NoError(t, svc.Deliver(context.Background(), n))
}

func TestNotificationService_Deliver_Errors(t *testing.T) {
	t.Run("publish fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		events := mocks.NewMockEventPublisher(ctrl)
		svc := NewNotificationService(mocks.NewMockProfileDirectory(ctrl), mocks.NewMockMailer(ctrl), events, newTestLogger())

		events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("nats down"))
		assert.Error(t, svc.Deliver(context.Background(), testNotification(domain.NotificationApproved)))
	})

	t.Run("send fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := mocks.NewMockProfileDirectory(ctrl)
		mailer := mocks.NewMockMailer(ctrl)
		events := mocks.NewMockEventPublisher(ctrl)
		svc := NewNotificationService(profiles, mailer, events, newTestLogger())

		events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		profiles.EXPECT().ContactOf(gomock.Any(), gomock.Any()).Return(&domain.Contact{Email: "a@example.com"}, nil)
		mailer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp 451"))

		assert.Error(t, svc.Deliver(context.Background(), testNotification(domain.NotificationApproved)))
	})

	t.Run("unknown kind", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewNotificationService(mocks.NewMockProfileDirectory(ctrl), mocks.NewMockMailer(ctrl), mocks.NewMockEventPublisher(ctrl), newTestLogger())
		assert.Error(t, svc.Deliver(context.Background(), testNotification("cancelled")))
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "IDR 149000", FormatAmount(149000, "IDR"))
	assert.Equal(t, "EUR 12.50", FormatAmount(1250, "EUR"))
	assert.Equal(t, "USD 0.05", FormatAmount(5, "USD"))
}
