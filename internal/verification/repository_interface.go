package verification

import "context"

type Repository interface {
	Upsert(ctx context.Context, userID int, documentType, frontRef string, backRef *string) (*VerificationRequest, error)
	GetByUserID(ctx context.Context, userID int) (*VerificationRequest, error)
	GetByID(ctx context.Context, id int) (*VerificationRequest, error)
	ListPending(ctx context.Context) ([]VerificationRequest, error)
	UpdateStatus(ctx context.Context, id int, status string, reviewerID int, notes *string) (*VerificationRequest, error)
}
