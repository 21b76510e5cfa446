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

var userByNameQuery = regexp.QuoteMeta("SELECT * FROM users WHERE username = $1")

func newReferralService(t *testing.T) (*ReferralService, sqlmock.Sqlmock) {
	repo, mock := newMockRepo(t)
	return NewReferralService(repo, NewLedgerSettings(repo, testLedgerConfig)), mock
}

func TestRecordSignupCreditsReferrer(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))
	expectDefaultSetting(mock, model.SettingSignupReward)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(1)).WillReturnRows(profileRow(1, "50.00", "0.00"))
	mock.ExpectQuery("INSERT INTO referrals").
		WithArgs(int64(1), int64(2), "100").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), time.Now()))
	mock.ExpectExec("UPDATE profiles SET token_rewards").
		WithArgs("150", "0", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ledger_transactions").WillReturnRows(ledgerInsertRow())
	mock.ExpectCommit()

	require.NoError(t, svc.RecordSignup(context.Background(), "ada", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignupUsesConfiguredReward(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))
	mock.ExpectQuery(settingQuery).
		WithArgs(model.SettingSignupReward).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("25.00"))
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WillReturnRows(profileRow(1, "0.00", "0.00"))
	mock.ExpectQuery("INSERT INTO referrals").
		WithArgs(int64(1), int64(2), "25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), time.Now()))
	mock.ExpectExec("UPDATE profiles SET token_rewards").
		WithArgs("25", "0", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ledger_transactions").WillReturnRows(ledgerInsertRow())
	mock.ExpectCommit()

	require.NoError(t, svc.RecordSignup(context.Background(), "ada", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignupRejectsSelfReferral(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))

	assert.ErrorIs(t, svc.RecordSignup(context.Background(), "ada", 1), ErrSelfReferral)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignupIgnoresUnknownCode(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("nobody").WillReturnRows(sqlmock.NewRows(userColumns))

	assert.NoError(t, svc.RecordSignup(context.Background(), "nobody", 2))
	assert.NoError(t, svc.RecordSignup(context.Background(), "", 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSignupTwiceDoesNotCreditAgain(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))
	expectDefaultSetting(mock, model.SettingSignupReward)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WillReturnRows(profileRow(1, "100.00", "0.00"))
	mock.ExpectQuery("INSERT INTO referrals").WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, svc.RecordSignup(context.Background(), "ada", 2), ErrReferralAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClickSkipsReferrerOwnClick(t *testing.T) {
	svc, mock := newReferralService(t)

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))

	item := &model.Item{ID: uuid.New(), Name: "Kettle"}
	require.NoError(t, svc.RecordClick(context.Background(), "ada", item, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClickWithDisabledRewardOnlyCounts(t *testing.T) {
	svc, mock := newReferralService(t)
	item := &model.Item{ID: uuid.New(), Name: "Kettle"}
	cols := []string{"id", "referrer_id", "item_id", "clicks", "sales", "created_at", "updated_at", "inserted"}

	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(1, "ada"))
	expectDefaultSetting(mock, model.SettingClickReward)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WillReturnRows(profileRow(1, "0.00", "0.00"))
	mock.ExpectQuery("INSERT INTO item_referrals").
		WithArgs(int64(1), item.ID.String()).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), int64(1), item.ID.String(), 1, 0, time.Now(), time.Now(), true))
	mock.ExpectCommit()

	require.NoError(t, svc.RecordClick(context.Background(), "ada", item, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSaleCreditsSaleReward(t *testing.T) {
	svc, mock := newReferralService(t)
	refID := uuid.New()
	itemID := uuid.New()
	cols := []string{"id", "referrer_id", "item_id", "clicks", "sales", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM item_referrals WHERE id = $1")).
		WithArgs(refID.String()).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(refID.String(), int64(1), itemID.String(), 9, 0, time.Now(), time.Now()))
	expectDefaultSetting(mock, model.SettingSaleReward)
	mock.ExpectBegin()
	mock.ExpectQuery(lockProfileQuery).WithArgs(int64(1)).WillReturnRows(profileRow(1, "0.00", "0.00"))
	mock.ExpectQuery("UPDATE item_referrals SET sales").
		WithArgs(refID.String(), int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(refID.String(), int64(1), itemID.String(), 9, 1, time.Now(), time.Now()))
	mock.ExpectExec("UPDATE profiles SET token_rewards").
		WithArgs("100", "0", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ledger_transactions").WillReturnRows(ledgerInsertRow())
	mock.ExpectCommit()

	ref, err := svc.RecordSale(context.Background(), refID)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Sales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemLink(t *testing.T) {
	assert.Equal(t, "https://vouchly.ng/buy/air-fryer?ref=ada+o", ItemLink("https://vouchly.ng/", "air-fryer", "ada o"))
	assert.Equal(t, "https://vouchly.ng/api/register?ref=ada", SignupLink("https://vouchly.ng", "ada"))
}
