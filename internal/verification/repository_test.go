package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

var requestCols = []string{"id", "user_id", "document_type", "front_ref", "back_ref", "status", "admin_notes", "submitted_at", "reviewed_at", "reviewer_id"}

func TestUpsert(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	back := "blob/back.jpg"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identity_verifications (user_id, document_type, front_ref, back_ref)")).
		WithArgs(1, "passport", "blob/front.jpg", &back).
		WillReturnRows(sqlmock.NewRows(requestCols).
			AddRow(5, 1, "passport", "blob/front.jpg", back, "pending", nil, now, nil, nil))

	req, err := repo.Upsert(context.Background(), 1, "passport", "blob/front.jpg", &back)
	require.NoError(t, err)
	require.Equal(t, 5, req.ID)
	require.Equal(t, StatusPending, req.Status)
	require.Nil(t, req.ReviewedAt)
}

func TestGetByUserIDNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT id, user_id, document_type").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(requestCols))

	_, err := repo.GetByUserID(context.Background(), 9)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestListPendingOldestFirst(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	rows := sqlmock.NewRows(requestCols).
		AddRow(1, 1, "passport", "f1", nil, "pending", nil, now.Add(-2*time.Hour), nil, nil).
		AddRow(2, 2, "national_id", "f2", nil, "pending", nil, now.Add(-time.Hour), nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'pending'")).
		WillReturnRows(rows)

	list, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.True(t, list[0].SubmittedAt.Before(list[1].SubmittedAt))
}

func TestUpdateStatus(t *testing.T) {
	t.Run("Approve pending request", func(t *testing.T) {
		repo, mock, close := setupMock(t)
		defer close()

		now := time.Now()
		notes := "looks good"

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE identity_verifications")).
			WithArgs("approved", 3, &notes, 5).
			WillReturnRows(sqlmock.NewRows(requestCols).
				AddRow(5, 1, "passport", "f", nil, "approved", notes, now.Add(-time.Hour), now, 3))

		req, err := repo.UpdateStatus(context.Background(), 5, StatusApproved, 3, &notes)
		require.NoError(t, err)
		require.Equal(t, StatusApproved, req.Status)
		require.NotNil(t, req.ReviewedAt)
		require.Equal(t, 3, *req.ReviewerID)
	})

	t.Run("Finalized request refuses a second decision", func(t *testing.T) {
		repo, mock, close := setupMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE identity_verifications")).
			WithArgs("rejected", 3, nil, 5).
			WillReturnRows(sqlmock.NewRows(requestCols))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM identity_verifications WHERE id = $1)")).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.UpdateStatus(context.Background(), 5, StatusRejected, 3, nil)
		require.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("Missing request", func(t *testing.T) {
		repo, mock, close := setupMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE identity_verifications")).
			WithArgs("approved", 3, nil, 42).
			WillReturnRows(sqlmock.NewRows(requestCols))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM identity_verifications WHERE id = $1)")).
			WithArgs(42).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.UpdateStatus(context.Background(), 42, StatusApproved, 3, nil)
		require.ErrorIs(t, err, ErrRequestNotFound)
	})
}
