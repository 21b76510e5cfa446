package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/model"
)

var getPayoutQuery = regexp.QuoteMeta("SELECT * FROM payout_requests WHERE id = $1")

type recordingNotifier struct {
	requested []*model.PayoutRequest
	changed   []model.PayoutStatus
}

func (n *recordingNotifier) NotifyPayoutRequested(p *model.PayoutRequest, _ string) error {
	n.requested = append(n.requested, p)
	return nil
}

func (n *recordingNotifier) NotifyPayoutStatus(p *model.PayoutRequest, from model.PayoutStatus) error {
	n.changed = append(n.changed, from, p.Status)
	return nil
}

func newPayoutService(t *testing.T) (*PayoutService, sqlmock.Sqlmock) {
	repo, mock := newMockRepo(t)
	return NewPayoutService(repo, NewLedgerSettings(repo, testLedgerConfig)), mock
}

func validPayoutInput(amount string) PayoutInput {
	return PayoutInput{Amount: amount, BankName: "gtbank", AccountNumber: "0123456789", AccountName: "Ada Obi"}
}

func TestSubmitReservesBalance(t *testing.T) {
	svc, mock := newPayoutService(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	id := uuid.New()

	expectDefaultSetting(mock, model.SettingMinPayoutAmount)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "0.00", "1000.00"))
	mock.ExpectQuery("INSERT INTO payout_requests").
		WithArgs(int64(7), "500", "gtbank", "0123456789", "Ada Obi", model.PayoutStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), time.Now(), time.Now()))
	mock.ExpectExec("UPDATE profiles SET token_rewards").
		WithArgs("0", "500", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ledger_transactions").
		WithArgs(int64(7), model.LedgerKindPayoutReserve, "0", "-500", "0", "500", id.String(), sqlmock.AnyArg()).
		WillReturnRows(ledgerInsertRow())
	mock.ExpectExec("UPDATE profiles SET saved_bank_name").
		WithArgs("gtbank", "0123456789", "Ada Obi", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE id = $1")).WillReturnRows(userRow(7, "ada"))

	payout, err := svc.Submit(context.Background(), 7, validPayoutInput("500"))
	require.NoError(t, err)
	assert.Equal(t, id, payout.ID)
	assert.Equal(t, model.PayoutStatusPending, payout.Status)
	assert.Len(t, notifier.requested, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      PayoutInput
		wantErr error
	}{
		{"malformed", validPayoutInput("12.345"), ErrMalformedAmount},
		{"zero", validPayoutInput("0"), ErrNonPositiveAmount},
		{"unknown bank", PayoutInput{Amount: "50", BankName: "monzo", AccountNumber: "0123456789", AccountName: "A"}, ErrUnknownBank},
		{"short account", PayoutInput{Amount: "50", BankName: "kuda", AccountNumber: "12345", AccountName: "A"}, ErrInvalidAccountNumber},
		{"letters in account", PayoutInput{Amount: "50", BankName: "kuda", AccountNumber: "01234567ab", AccountName: "A"}, ErrInvalidAccountNumber},
		{"no name", PayoutInput{Amount: "50", BankName: "kuda", AccountNumber: "0123456789", AccountName: "  "}, ErrAccountNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newPayoutService(t)
			_, err := svc.Submit(context.Background(), 7, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmitBelowMinimum(t *testing.T) {
	svc, mock := newPayoutService(t)

	mock.ExpectQuery(settingQuery).
		WithArgs(model.SettingMinPayoutAmount).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("25.00"))

	_, err := svc.Submit(context.Background(), 7, validPayoutInput("24.99"))
	assert.ErrorIs(t, err, ErrBelowMinimumPayout)
	assert.Contains(t, err.Error(), "25.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitInsufficientBalance(t *testing.T) {
	svc, mock := newPayoutService(t)

	expectDefaultSetting(mock, model.SettingMinPayoutAmount)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "900.00", "40.00"))
	mock.ExpectRollback()

	_, err := svc.Submit(context.Background(), 7, validPayoutInput("40.01"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionToRejectedRefunds(t *testing.T) {
	svc, mock := newPayoutService(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	id := uuid.New()

	mock.ExpectQuery(getPayoutQuery).WithArgs(id.String()).WillReturnRows(payoutRow(id.String(), 7, "500.00", "pending"))
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "0.00", "500.00"))
	mock.ExpectQuery("FOR UPDATE").WithArgs(id.String(), int64(7)).WillReturnRows(payoutRow(id.String(), 7, "500.00", "pending"))
	mock.ExpectExec("UPDATE profiles SET token_rewards").
		WithArgs("0", "1000", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ledger_transactions").
		WithArgs(int64(7), model.LedgerKindPayoutRefund, "0", "500", "0", "1000", id.String(), sqlmock.AnyArg()).
		WillReturnRows(ledgerInsertRow())
	mock.ExpectQuery("UPDATE payout_requests SET status").
		WithArgs(model.PayoutStatusRejected, id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	payout, from, err := svc.Transition(context.Background(), id, model.PayoutStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutStatusPending, from)
	assert.Equal(t, model.PayoutStatusRejected, payout.Status)
	assert.Equal(t, []model.PayoutStatus{model.PayoutStatusPending, model.PayoutStatusRejected}, notifier.changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRepeatedRejectionIsNoop(t *testing.T) {
	svc, mock := newPayoutService(t)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	id := uuid.New()

	mock.ExpectQuery(getPayoutQuery).WillReturnRows(payoutRow(id.String(), 7, "500.00", "rejected"))
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "0.00", "1000.00"))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(payoutRow(id.String(), 7, "500.00", "rejected"))
	mock.ExpectCommit()

	payout, from, err := svc.Transition(context.Background(), id, model.PayoutStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutStatusRejected, from)
	assert.Equal(t, model.PayoutStatusRejected, payout.Status)
	assert.Empty(t, notifier.changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionReopenNeedsBalance(t *testing.T) {
	svc, mock := newPayoutService(t)
	id := uuid.New()

	mock.ExpectQuery(getPayoutQuery).WillReturnRows(payoutRow(id.String(), 7, "500.00", "rejected"))
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "0.00", "200.00"))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(payoutRow(id.String(), 7, "500.00", "rejected"))
	mock.ExpectRollback()

	_, _, err := svc.Transition(context.Background(), id, model.PayoutStatusPending)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionFromPaidIsRefused(t *testing.T) {
	svc, mock := newPayoutService(t)
	id := uuid.New()

	mock.ExpectQuery(getPayoutQuery).WillReturnRows(payoutRow(id.String(), 7, "500.00", "paid"))
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(7)).WillReturnRows(profileRow(7, "0.00", "500.00"))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(payoutRow(id.String(), 7, "500.00", "paid"))
	mock.ExpectRollback()

	_, _, err := svc.Transition(context.Background(), id, model.PayoutStatusRejected)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, mock := newPayoutService(t)

	_, _, err := svc.Transition(context.Background(), uuid.New(), model.PayoutStatus("cancelled"))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
