package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

var profileColumns = []string{
	"user_id", "image", "token_rewards", "balance",
	"saved_bank_name", "saved_account_number", "saved_account_name", "updated_at",
}

func profileRow(userID int64, tokens, balance string) *sqlmock.Rows {
	return sqlmock.NewRows(profileColumns).
		AddRow(userID, "default.jpg", tokens, balance, nil, nil, nil, time.Now())
}

func ledgerInsertRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at"}).
		AddRow("0b0a5d4e-0c7f-4d11-9f47-5d3a7c0e9a11", time.Now())
}
