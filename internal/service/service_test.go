package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/repository"
)

var (
	lockProfileQuery = regexp.QuoteMeta("SELECT * FROM profiles WHERE user_id = $1 FOR UPDATE")
	settingQuery     = regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")
)

var testLedgerConfig = config.LedgerConfig{
	SignupReward:    decimal.NewFromInt(100),
	ClickReward:     decimal.Zero,
	SaleReward:      decimal.NewFromInt(100),
	MinPayoutAmount: decimal.NewFromInt(10),
}

func newMockRepo(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

var profileColumns = []string{
	"user_id", "image", "token_rewards", "balance",
	"saved_bank_name", "saved_account_number", "saved_account_name", "updated_at",
}

func profileRow(userID int64, tokens, balance string) *sqlmock.Rows {
	return sqlmock.NewRows(profileColumns).
		AddRow(userID, "default.jpg", tokens, balance, nil, nil, nil, time.Now())
}

var payoutColumns = []string{
	"id", "user_id", "amount", "bank_name", "account_number", "account_name", "status", "created_at", "updated_at",
}

func payoutRow(id string, userID int64, amount, status string) *sqlmock.Rows {
	return sqlmock.NewRows(payoutColumns).
		AddRow(id, userID, amount, "gtbank", "0123456789", "Ada Obi", status, time.Now(), time.Now())
}

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func userRow(id int64, username string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, username+"@example.com", "hash", time.Now(), time.Now())
}

func ledgerInsertRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at"}).
		AddRow("0b0a5d4e-0c7f-4d11-9f47-5d3a7c0e9a11", time.Now())
}

// expectDefaultSetting makes the settings lookup miss so the configured
// default applies.
func expectDefaultSetting(mock sqlmock.Sqlmock, key string) {
	mock.ExpectQuery(settingQuery).WithArgs(key).WillReturnRows(sqlmock.NewRows([]string{"value"}))
}
