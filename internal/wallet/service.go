package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradeforce/internal/auth"
	"tradeforce/internal/metrics"
)

var (
	ErrUnknownType     = errors.New("transaction type must be deposit or withdrawal")
	ErrAccountInactive = errors.New("account is deactivated")
)

// AccountChecker answers whether the submitting user's account is active.
// Implemented by the user repository; declared here to keep the dependency
// pointing one way.
type AccountChecker interface {
	IsActive(ctx context.Context, userID int) (bool, error)
}

// Notifier delivers fire-and-forget notices. Delivery failures never affect
// ledger state.
type Notifier interface {
	TransactionReceived(ctx context.Context, userID int, tx *Transaction)
	TransactionDecided(ctx context.Context, tx *Transaction, note string)
}

type SubmitRequest struct {
	AmountCents int64
	Type        string
	Method      string
	Reference   string
	Description string
}

type Service interface {
	Submit(ctx context.Context, userID int, req SubmitRequest) (*Transaction, error)
	Approve(ctx context.Context, caller auth.Caller, transactionID int) (*Transaction, int64, error)
	Reject(ctx context.Context, caller auth.Caller, transactionID int, reason string) (*Transaction, error)
	Fail(ctx context.Context, caller auth.Caller, transactionID int) (*Transaction, error)
	GetWallet(ctx context.Context, userID int) (*Wallet, error)
	ListMyTransactions(ctx context.Context, userID, limit, offset int) ([]Transaction, error)
	ListPending(ctx context.Context, caller auth.Caller) ([]Transaction, error)
}

type service struct {
	repo     Repository
	accounts AccountChecker
	notifier Notifier
}

func NewService(repo Repository, accounts AccountChecker, notifier Notifier) Service {
	return &service{
		repo:     repo,
		accounts: accounts,
		notifier: notifier,
	}
}

func (s *service) Submit(ctx context.Context, userID int, req SubmitRequest) (*Transaction, error) {
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if !ValidType(req.Type) {
		return nil, ErrUnknownType
	}

	active, err := s.accounts.IsActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrAccountInactive
	}

	w, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("TF-%d", time.Now().UnixMilli())
	}

	tx, err := s.repo.CreateTransaction(ctx, w.ID, req.AmountCents, req.Type, req.Method, reference, req.Description)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransactionSubmitted(tx.Type, tx.Method)
	if s.notifier != nil {
		s.notifier.TransactionReceived(ctx, userID, tx)
	}

	return tx, nil
}

// Approve settles a pending transaction. The balance mutation and the status
// transition commit together inside the repository; a concurrent decision
// surfaces as ErrStatusConflict and an overdrawing withdrawal as
// ErrInsufficientFunds with the transaction left pending.
func (s *service) Approve(ctx context.Context, caller auth.Caller, transactionID int) (*Transaction, int64, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}

	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, 0, err
	}

	delta := tx.AmountCents
	if tx.Type == TypeWithdrawal {
		delta = -tx.AmountCents
	}

	updated, balanceAfter, err := s.repo.UpdateTransactionStatusIf(ctx, transactionID, StatusPending, StatusCompleted, delta)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			metrics.RecordTransactionConflict()
		}
		if errors.Is(err, ErrInsufficientFunds) {
			metrics.RecordInsufficientFunds()
		}
		return nil, 0, err
	}

	metrics.RecordTransactionDecision(updated.Type, updated.Status)
	if s.notifier != nil {
		s.notifier.TransactionDecided(ctx, updated, "")
	}

	return updated, balanceAfter, nil
}

func (s *service) Reject(ctx context.Context, caller auth.Caller, transactionID int, reason string) (*Transaction, error) {
	return s.decideWithoutBalance(ctx, caller, transactionID, StatusRejected, reason)
}

func (s *service) Fail(ctx context.Context, caller auth.Caller, transactionID int) (*Transaction, error) {
	return s.decideWithoutBalance(ctx, caller, transactionID, StatusFailed, "")
}

// decideWithoutBalance covers the terminal transitions that never touch the
// wallet balance.
func (s *service) decideWithoutBalance(ctx context.Context, caller auth.Caller, transactionID int, newStatus, reason string) (*Transaction, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	updated, _, err := s.repo.UpdateTransactionStatusIf(ctx, transactionID, StatusPending, newStatus, 0)
	if err != nil {
		if errors.Is(err, ErrStatusConflict) {
			metrics.RecordTransactionConflict()
		}
		return nil, err
	}

	metrics.RecordTransactionDecision(updated.Type, updated.Status)
	if s.notifier != nil {
		s.notifier.TransactionDecided(ctx, updated, reason)
	}

	return updated, nil
}

func (s *service) GetWallet(ctx context.Context, userID int) (*Wallet, error) {
	return s.repo.GetWalletByUserID(ctx, userID)
}

func (s *service) ListMyTransactions(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	w, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByWallet(ctx, w.ID, limit, offset)
}

func (s *service) ListPending(ctx context.Context, caller auth.Caller) ([]Transaction, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx)
}
