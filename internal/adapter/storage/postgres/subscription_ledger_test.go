package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionLedger_CancelSubscription(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewSubscriptionLedger(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE subscriptions SET status = 'canceled'").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, ledger.CancelSubscription(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionLedger_CancelSubscription_NothingActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewSubscriptionLedger(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, ledger.CancelSubscription(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionLedger_CancelSubscription_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewSubscriptionLedger(mock)
	userID := uuid.New()

	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(userID).
		WillReturnError(errors.New("deadlock detected"))

	err = ledger.CancelSubscription(context.Background(), userID)
	assert.ErrorContains(t, err, "cancel subscription")
}

func TestSubscriptionLedger_OwnerOfOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewSubscriptionLedger(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT user_id FROM subscriptions WHERE gateway_order_id").
		WithArgs("ORDER-77").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

	owner, err := ledger.OwnerOfOrder(context.Background(), "ORDER-77")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, userID, *owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionLedger_OwnerOfOrder_Unknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ledger := NewSubscriptionLedger(mock)

	mock.ExpectQuery("SELECT user_id FROM subscriptions").
		WithArgs("ORDER-404").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))

	owner, err := ledger.OwnerOfOrder(context.Background(), "ORDER-404")
	assert.NoError(t, err)
	assert.Nil(t, owner)
}
