package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/model"
)

func TestCreateReviewTranslatesUniqueViolation(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_item_author_key"})

	err := repo.CreateReview(context.Background(), &model.Review{
		ItemID: uuid.New(), AuthorID: 3, Rating: 4, Title: "Solid", Content: "Works well",
	})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReview(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_featured", "created_at"}).AddRow(id.String(), false, time.Now()))

	review := &model.Review{ItemID: uuid.New(), AuthorID: 3, Rating: 5, Title: "Great", Content: "Loved it"}
	require.NoError(t, repo.CreateReview(context.Background(), review))
	assert.Equal(t, id, review.ID)
}

func TestSetFeaturedReviewClearsOthersFirst(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET is_featured = FALSE WHERE is_featured AND id <> $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET is_featured = TRUE WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetFeaturedReview(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFeaturedReviewUnknownRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("is_featured = FALSE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("is_featured = TRUE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.SetFeaturedReview(context.Background(), id), ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAverageRatingWithoutReviews(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("AVG").WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	avg, err := repo.GetAverageRating(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, avg)
}
