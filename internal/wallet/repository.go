package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStatusConflict      = errors.New("transaction already decided")
	ErrInsufficientFunds   = errors.New("insufficient funds")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWallet(ctx context.Context, userID int, currency string) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id, currency)
		 VALUES ($1, $2)
		 RETURNING id, user_id, balance_cents, currency, created_at, updated_at`,
		userID, currency,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *repository) GetWalletByUserID(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w,
		`SELECT id, user_id, balance_cents, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	return w, nil
}

func (r *repository) GetWalletByID(ctx context.Context, id int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w,
		`SELECT id, user_id, balance_cents, currency, created_at, updated_at
		 FROM wallets
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	return w, nil
}

func (r *repository) CreateTransaction(ctx context.Context, walletID int, amountCents int64, txType, method, reference, description string) (*Transaction, error) {
	t := &Transaction{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount_cents, type, method, reference, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, wallet_id, amount_cents, type, status, method, reference, description, created_at, status_changed_at`,
		walletID, amountCents, txType, method, reference, description,
	).StructScan(t)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (r *repository) GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	t := &Transaction{}
	err := r.db.GetContext(ctx, t,
		`SELECT id, wallet_id, amount_cents, type, status, method, reference, description, created_at, status_changed_at
		 FROM wallet_transactions
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	return t, nil
}

func (r *repository) ListByWallet(ctx context.Context, walletID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs,
		`SELECT id, wallet_id, amount_cents, type, status, method, reference, description, created_at, status_changed_at
		 FROM wallet_transactions
		 WHERE wallet_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		walletID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) ListPending(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs,
		`SELECT id, wallet_id, amount_cents, type, status, method, reference, description, created_at, status_changed_at
		 FROM wallet_transactions
		 WHERE status = 'pending'
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

// UpdateTransactionStatusIf performs the one atomic transition out of pending.
// The status update is conditional on the row still holding expectedStatus;
// losing a concurrent race surfaces as ErrStatusConflict with no mutation. A
// non-zero balanceDelta is applied to the owning wallet in the same database
// transaction, conditional on the balance staying non-negative. A withdrawal
// that would overdraw rolls everything back and leaves the transaction pending.
func (r *repository) UpdateTransactionStatusIf(ctx context.Context, id int, expectedStatus, newStatus string, balanceDelta int64) (*Transaction, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	updated := &Transaction{}
	err = tx.QueryRowxContext(ctx,
		`UPDATE wallet_transactions
		 SET status = $1, status_changed_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING id, wallet_id, amount_cents, type, status, method, reference, description, created_at, status_changed_at`,
		newStatus, id, expectedStatus,
	).StructScan(updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var current string
			if err := tx.GetContext(ctx, &current,
				`SELECT status FROM wallet_transactions WHERE id = $1`, id,
			); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, 0, ErrTransactionNotFound
				}
				return nil, 0, err
			}
			return nil, 0, ErrStatusConflict
		}
		return nil, 0, err
	}

	var balanceAfter int64
	if balanceDelta != 0 {
		err = tx.GetContext(ctx, &balanceAfter,
			`UPDATE wallets
			 SET balance_cents = balance_cents + $1, updated_at = NOW()
			 WHERE id = $2 AND balance_cents + $1 >= 0
			 RETURNING balance_cents`,
			balanceDelta, updated.WalletID,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, 0, ErrInsufficientFunds
			}
			return nil, 0, err
		}
	} else {
		err = tx.GetContext(ctx, &balanceAfter,
			`SELECT balance_cents FROM wallets WHERE id = $1`,
			updated.WalletID,
		)
		if err != nil {
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	return updated, balanceAfter, nil
}
