package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/auth"
	"github.com/yanex66/vouchly/internal/config"
	"github.com/yanex66/vouchly/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var testAuthConfig = config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	repo, mock := newMockRepo(t)
	svc := NewUserService(repo, testAuthConfig)
	svc.SetReferralService(NewReferralService(repo, NewLedgerSettings(repo, testLedgerConfig)))
	return svc, mock
}

func expectCreateUser(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ada", "ada@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO profiles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestRegisterSurvivesFailedReferral(t *testing.T) {
	svc, mock := newUserService(t)

	expectCreateUser(mock, 11)
	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(userRow(11, "ada"))

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "ada", Email: " Ada@Example.com ", Password: "long enough",
	}, "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(11), user.ID)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "long enough"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidation(t *testing.T) {
	svc, mock := newUserService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "ada lovelace", Password: "long enough"}, "")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "ada", Password: "short"}, "")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").WillReturnError(uniqueErr("users_username_key"))
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterInput{Username: "ada", Email: "ada@example.com", Password: "long enough"}, "")
	assert.ErrorIs(t, err, repository.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, mock := newUserService(t)
	hash, err := auth.HashPassword("long enough", bcrypt.MinCost)
	require.NoError(t, err)

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns).AddRow(int64(11), "ada", "ada@example.com", hash, time.Now(), time.Now())
	}
	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(rows())
	mock.ExpectQuery(userByNameQuery).WithArgs("ada").WillReturnRows(rows())
	mock.ExpectQuery(userByNameQuery).WithArgs("bob").WillReturnRows(sqlmock.NewRows(userColumns))

	session, err := svc.Login(context.Background(), "ada", "long enough")
	require.NoError(t, err)
	claims, err := svc.Issuer().Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)

	_, err = svc.Login(context.Background(), "ada", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "bob", "long enough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}
