package analytics

import (
	"context"
	"encoding/json"
	"time"

	"tradeforce/internal/auth"
	"tradeforce/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 60 * time.Second
	trendDays         = 7
)

type Service interface {
	Dashboard(ctx context.Context, caller auth.Caller) (*Dashboard, error)
}

type service struct {
	repo  Repository
	cache *redis.Client
}

// NewService wires the rollup queries behind a short-lived cache. A nil cache
// client disables caching and every call hits the database.
func NewService(repo Repository, cache *redis.Client) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) Dashboard(ctx context.Context, caller auth.Caller) (*Dashboard, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	dashboard, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, dashboard)
	return dashboard, nil
}

func (s *service) build(ctx context.Context) (*Dashboard, error) {
	stats, err := s.repo.GetUserStats(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.GetPendingCounts(ctx)
	if err != nil {
		return nil, err
	}

	totalBalance, err := s.repo.GetTotalBalance(ctx)
	if err != nil {
		return nil, err
	}

	trend, err := s.repo.GetRegistrationTrend(ctx, trendDays)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		UserStats:         *stats,
		PendingCounts:     *pending,
		TotalBalanceCents: totalBalance,
		UsersByDate:       trend,
	}, nil
}

// Cache failures are not fatal; the dashboard degrades to direct reads.
func (s *service) fromCache(ctx context.Context) *Dashboard {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, dashboardCacheKey).Result()
	if err != nil {
		return nil
	}

	var dashboard Dashboard
	if err := json.Unmarshal([]byte(data), &dashboard); err != nil {
		logger.Warnf("Bad cached dashboard, rebuilding: %v", err)
		return nil
	}
	return &dashboard
}

func (s *service) toCache(ctx context.Context, dashboard *Dashboard) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
		logger.Warnf("Failed to cache dashboard: %v", err)
	}
}
