package verification

import (
	"context"
	"errors"

	"tradeforce/internal/auth"
	"tradeforce/internal/metrics"
)

var (
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrMissingFrontRef     = errors.New("front document reference is required")
	ErrUnknownDecision     = errors.New("decision must be approved, rejected or pending")
)

// Notifier delivers fire-and-forget review notices.
type Notifier interface {
	VerificationReceived(ctx context.Context, userID int)
	VerificationReviewed(ctx context.Context, req *VerificationRequest)
}

type SubmitRequest struct {
	DocumentType string
	FrontRef     string
	BackRef      *string
}

type Service interface {
	Submit(ctx context.Context, userID int, req SubmitRequest) (*VerificationRequest, error)
	Review(ctx context.Context, caller auth.Caller, requestID int, decision string, notes *string) (*VerificationRequest, error)
	GetMine(ctx context.Context, userID int) (*VerificationRequest, error)
	ListPending(ctx context.Context, caller auth.Caller) ([]VerificationRequest, error)
}

type service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *service) Submit(ctx context.Context, userID int, req SubmitRequest) (*VerificationRequest, error) {
	if !ValidDocumentType(req.DocumentType) {
		return nil, ErrUnknownDocumentType
	}
	if req.FrontRef == "" {
		return nil, ErrMissingFrontRef
	}

	created, err := s.repo.Upsert(ctx, userID, req.DocumentType, req.FrontRef, req.BackRef)
	if err != nil {
		return nil, err
	}

	metrics.RecordVerificationSubmitted()
	if s.notifier != nil {
		s.notifier.VerificationReceived(ctx, userID)
	}

	return created, nil
}

// Review records an admin decision. Approved and rejected are terminal; a
// pending decision requests more information and may be repeated. Finalized
// requests cannot be re-decided.
func (s *service) Review(ctx context.Context, caller auth.Caller, requestID int, decision string, notes *string) (*VerificationRequest, error) {
	if !ValidDecision(decision) {
		return nil, ErrUnknownDecision
	}
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	reviewed, err := s.repo.UpdateStatus(ctx, requestID, decision, caller.ID, notes)
	if err != nil {
		return nil, err
	}

	metrics.RecordVerificationReview(decision)
	if s.notifier != nil {
		s.notifier.VerificationReviewed(ctx, reviewed)
	}

	return reviewed, nil
}

func (s *service) GetMine(ctx context.Context, userID int) (*VerificationRequest, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ListPending(ctx context.Context, caller auth.Caller) ([]VerificationRequest, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx)
}
