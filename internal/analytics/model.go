package analytics

type UserStats struct {
	TotalUsers        int `db:"total_users" json:"total_users"`
	ActiveUsers       int `db:"active_users" json:"active_users"`
	InactiveUsers     int `db:"inactive_users" json:"inactive_users"`
	AdminUsers        int `db:"admin_users" json:"admin_users"`
	RegularUsers      int `db:"regular_users" json:"regular_users"`
	NewUsersToday     int `db:"new_users_today" json:"new_users_today"`
	NewUsersThisWeek  int `db:"new_users_this_week" json:"new_users_this_week"`
	NewUsersThisMonth int `db:"new_users_this_month" json:"new_users_this_month"`
}

type PendingCounts struct {
	PendingTransactions  int `db:"pending_transactions" json:"pending_transactions"`
	PendingVerifications int `db:"pending_verifications" json:"pending_verifications"`
}

type RegistrationBucket struct {
	Bucket string `db:"bucket" json:"date"`
	Count  int    `db:"count" json:"count"`
}

// Dashboard is a point-in-time snapshot; it is not transactionally consistent
// with concurrent writes.
type Dashboard struct {
	UserStats
	PendingCounts
	TotalBalanceCents int64                `json:"total_balance_cents"`
	UsersByDate       []RegistrationBucket `json:"users_by_date"`
}
