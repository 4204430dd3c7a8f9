package analytics

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"tradeforce/internal/auth"
	"tradeforce/internal/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()

	os.Exit(m.Run())
}

type MockAnalyticsRepo struct{ mock.Mock }

func (m *MockAnalyticsRepo) GetUserStats(ctx context.Context) (*UserStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserStats), args.Error(1)
}

func (m *MockAnalyticsRepo) GetPendingCounts(ctx context.Context) (*PendingCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PendingCounts), args.Error(1)
}

func (m *MockAnalyticsRepo) GetTotalBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnalyticsRepo) GetRegistrationTrend(ctx context.Context, days int) ([]RegistrationBucket, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RegistrationBucket), args.Error(1)
}

var (
	adminCaller = auth.Caller{ID: 1, Role: auth.RoleAdmin}
	userCaller  = auth.Caller{ID: 2, Role: auth.RoleUser}
)

func expectFullBuild(ctx context.Context, repo *MockAnalyticsRepo) {
	repo.On("GetUserStats", ctx).Return(&UserStats{TotalUsers: 10, ActiveUsers: 8}, nil)
	repo.On("GetPendingCounts", ctx).Return(&PendingCounts{PendingTransactions: 3, PendingVerifications: 1}, nil)
	repo.On("GetTotalBalance", ctx).Return(int64(50000), nil)
	repo.On("GetRegistrationTrend", ctx, trendDays).Return([]RegistrationBucket{{Bucket: "2026-08-29", Count: 2}}, nil)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Non-admin refused", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		svc := NewService(repo, nil)

		_, err := svc.Dashboard(ctx, userCaller)

		assert.ErrorIs(t, err, auth.ErrAdminRequired)
		repo.AssertNotCalled(t, "GetUserStats")
	})

	t.Run("Cache miss builds and stores", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		rdb, rmock := redismock.NewClientMock()
		svc := NewService(repo, rdb)

		rmock.ExpectGet(dashboardCacheKey).RedisNil()
		rmock.Regexp().ExpectSet(dashboardCacheKey, `.*`, dashboardCacheTTL).SetVal("OK")
		expectFullBuild(ctx, repo)

		dashboard, err := svc.Dashboard(ctx, adminCaller)

		assert.NoError(t, err)
		assert.Equal(t, 10, dashboard.TotalUsers)
		assert.Equal(t, int64(50000), dashboard.TotalBalanceCents)
		assert.Len(t, dashboard.UsersByDate, 1)
		assert.NoError(t, rmock.ExpectationsWereMet())
		repo.AssertExpectations(t)
	})

	t.Run("Cache hit skips the database", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		rdb, rmock := redismock.NewClientMock()
		svc := NewService(repo, rdb)

		cached, _ := json.Marshal(&Dashboard{
			UserStats:         UserStats{TotalUsers: 42},
			TotalBalanceCents: 999,
		})
		rmock.ExpectGet(dashboardCacheKey).SetVal(string(cached))

		dashboard, err := svc.Dashboard(ctx, adminCaller)

		assert.NoError(t, err)
		assert.Equal(t, 42, dashboard.TotalUsers)
		assert.Equal(t, int64(999), dashboard.TotalBalanceCents)
		repo.AssertNotCalled(t, "GetUserStats")
	})

	t.Run("Cache failure degrades to direct reads", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		rdb, rmock := redismock.NewClientMock()
		svc := NewService(repo, rdb)

		rmock.ExpectGet(dashboardCacheKey).SetErr(assert.AnError)
		rmock.Regexp().ExpectSet(dashboardCacheKey, `.*`, dashboardCacheTTL).SetErr(assert.AnError)
		expectFullBuild(ctx, repo)

		dashboard, err := svc.Dashboard(ctx, adminCaller)

		assert.NoError(t, err)
		assert.Equal(t, 10, dashboard.TotalUsers)
	})

	t.Run("Nil cache client hits the database", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		svc := NewService(repo, nil)

		expectFullBuild(ctx, repo)

		dashboard, err := svc.Dashboard(ctx, adminCaller)

		assert.NoError(t, err)
		assert.Equal(t, 8, dashboard.ActiveUsers)
	})

	t.Run("Repository error propagates", func(t *testing.T) {
		repo := new(MockAnalyticsRepo)
		svc := NewService(repo, nil)

		repo.On("GetUserStats", ctx).Return(nil, assert.AnError)

		_, err := svc.Dashboard(ctx, adminCaller)
		assert.Error(t, err)
	})
}
