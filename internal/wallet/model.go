package wallet

import "time"

const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

type Wallet struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	Currency     string    `db:"currency" json:"currency"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID              int       `db:"id" json:"id"`
	WalletID        int       `db:"wallet_id" json:"wallet_id"`
	AmountCents     int64     `db:"amount_cents" json:"amount_cents"`
	Type            string    `db:"type" json:"type"`
	Status          string    `db:"status" json:"status"`
	Method          string    `db:"method" json:"method"`
	Reference       string    `db:"reference" json:"reference"`
	Description     string    `db:"description" json:"description"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	StatusChangedAt time.Time `db:"status_changed_at" json:"status_changed_at"`
}

// Terminal reports whether the transaction has already been decided. Every
// status except pending is final.
func (t *Transaction) Terminal() bool {
	return t.Status != StatusPending
}

func ValidType(txType string) bool {
	return txType == TypeDeposit || txType == TypeWithdrawal
}
