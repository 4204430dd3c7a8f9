package analytics

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserStats(ctx context.Context) (*UserStats, error) {
	query := `
SELECT
  COUNT(*)                                                          AS total_users,
  COUNT(*) FILTER (WHERE is_active)                                 AS active_users,
  COUNT(*) FILTER (WHERE NOT is_active)                             AS inactive_users,
  COUNT(*) FILTER (WHERE role = 'admin')                            AS admin_users,
  COUNT(*) FILTER (WHERE role = 'user')                             AS regular_users,
  COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW()))    AS new_users_today,
  COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days')   AS new_users_this_week,
  COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')  AS new_users_this_month
FROM users;
`
	stats := &UserStats{}
	if err := r.db.GetContext(ctx, stats, query); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repository) GetPendingCounts(ctx context.Context) (*PendingCounts, error) {
	query := `
SELECT
  (SELECT COUNT(*) FROM wallet_transactions WHERE status = 'pending')    AS pending_transactions,
  (SELECT COUNT(*) FROM identity_verifications WHERE status = 'pending') AS pending_verifications;
`
	counts := &PendingCounts{}
	if err := r.db.GetContext(ctx, counts, query); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repository) GetTotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(balance_cents), 0) FROM wallets;`)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) GetRegistrationTrend(ctx context.Context, days int) ([]RegistrationBucket, error) {
	query := `
SELECT
  DATE(created_at)::text AS bucket,
  COUNT(*)               AS count
FROM users
WHERE created_at >= NOW() - make_interval(days => $1)
GROUP BY DATE(created_at)
ORDER BY bucket;
`
	var buckets []RegistrationBucket
	if err := r.db.SelectContext(ctx, &buckets, query, days); err != nil {
		return nil, err
	}
	return buckets, nil
}
