package wallet

import "context"

type Repository interface {
	CreateWallet(ctx context.Context, userID int, currency string) (*Wallet, error)
	GetWalletByUserID(ctx context.Context, userID int) (*Wallet, error)
	GetWalletByID(ctx context.Context, id int) (*Wallet, error)
	CreateTransaction(ctx context.Context, walletID int, amountCents int64, txType, method, reference, description string) (*Transaction, error)
	GetTransaction(ctx context.Context, id int) (*Transaction, error)
	ListByWallet(ctx context.Context, walletID, limit, offset int) ([]Transaction, error)
	ListPending(ctx context.Context) ([]Transaction, error)
	UpdateTransactionStatusIf(ctx context.Context, id int, expectedStatus, newStatus string, balanceDelta int64) (*Transaction, int64, error)
}
