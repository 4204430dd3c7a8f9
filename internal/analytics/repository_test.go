package analytics

import (
	"context"
	"regexp"
	"testing"

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

func TestGetUserStats(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	cols := []string{"total_users", "active_users", "inactive_users", "admin_users", "regular_users", "new_users_today", "new_users_this_week", "new_users_this_month"}
	mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(100, 90, 10, 2, 98, 3, 12, 40))

	stats, err := repo.GetUserStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 100, stats.TotalUsers)
	require.Equal(t, 90, stats.ActiveUsers)
	require.Equal(t, 10, stats.InactiveUsers)
	require.Equal(t, 2, stats.AdminUsers)
	require.Equal(t, 3, stats.NewUsersToday)
}

func TestGetPendingCounts(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("pending_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"pending_transactions", "pending_verifications"}).AddRow(4, 2))

	counts, err := repo.GetPendingCounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, counts.PendingTransactions)
	require.Equal(t, 2, counts.PendingVerifications)
}

func TestGetTotalBalance(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(balance_cents), 0) FROM wallets")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(123456))

	total, err := repo.GetTotalBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(123456), total)
}

func TestGetRegistrationTrend(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	rows := sqlmock.NewRows([]string{"bucket", "count"}).
		AddRow("2026-08-28", 3).
		AddRow("2026-08-29", 5)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY DATE(created_at)")).
		WithArgs(7).
		WillReturnRows(rows)

	trend, err := repo.GetRegistrationTrend(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	require.Equal(t, "2026-08-28", trend[0].Bucket)
	require.Equal(t, 5, trend[1].Count)
}
