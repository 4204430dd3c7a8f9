package analytics

import "context"

type Repository interface {
	GetUserStats(ctx context.Context) (*UserStats, error)
	GetPendingCounts(ctx context.Context) (*PendingCounts, error)
	GetTotalBalance(ctx context.Context) (int64, error)
	GetRegistrationTrend(ctx context.Context, days int) ([]RegistrationBucket, error)
}
