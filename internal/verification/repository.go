package verification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrRequestNotFound = errors.New("verification request not found")
	ErrAlreadyReviewed = errors.New("verification request already finalized")
)

const requestColumns = "id, user_id, document_type, front_ref, back_ref, status, admin_notes, submitted_at, reviewed_at, reviewer_id"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Upsert keeps exactly one request per user: resubmission replaces the
// document content and resets the status to pending. Reviewer attribution from
// a previous decision is left in place until the next terminal review.
func (r *repository) Upsert(ctx context.Context, userID int, documentType, frontRef string, backRef *string) (*VerificationRequest, error) {
	req := &VerificationRequest{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO identity_verifications (user_id, document_type, front_ref, back_ref)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET document_type = EXCLUDED.document_type,
		     front_ref = EXCLUDED.front_ref,
		     back_ref = EXCLUDED.back_ref,
		     status = 'pending',
		     submitted_at = NOW()
		 RETURNING `+requestColumns,
		userID, documentType, frontRef, backRef,
	).StructScan(req)
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*VerificationRequest, error) {
	req := &VerificationRequest{}
	err := r.db.GetContext(ctx, req,
		`SELECT `+requestColumns+` FROM identity_verifications WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return req, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*VerificationRequest, error) {
	req := &VerificationRequest{}
	err := r.db.GetContext(ctx, req,
		`SELECT `+requestColumns+` FROM identity_verifications WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	return req, nil
}

func (r *repository) ListPending(ctx context.Context) ([]VerificationRequest, error) {
	var reqs []VerificationRequest
	err := r.db.SelectContext(ctx, &reqs,
		`SELECT `+requestColumns+`
		 FROM identity_verifications
		 WHERE status = 'pending'
		 ORDER BY submitted_at ASC`,
	)
	if err != nil {
		return nil, err
	}

	return reqs, nil
}

// UpdateStatus applies a review decision conditional on the request still
// being pending, so finalized requests stay immutable. A pending decision
// ("more information requested") records the reviewer and notes but keeps
// reviewed_at from the previous terminal review, if any.
func (r *repository) UpdateStatus(ctx context.Context, id int, status string, reviewerID int, notes *string) (*VerificationRequest, error) {
	req := &VerificationRequest{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE identity_verifications
		 SET status = $1,
		     reviewer_id = $2,
		     admin_notes = $3,
		     reviewed_at = CASE WHEN $1 = 'pending' THEN reviewed_at ELSE NOW() END
		 WHERE id = $4 AND status = 'pending'
		 RETURNING `+requestColumns,
		status, reviewerID, notes, id,
	).StructScan(req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			exists, existsErr := r.exists(ctx, id)
			if existsErr != nil {
				return nil, existsErr
			}
			if !exists {
				return nil, ErrRequestNotFound
			}
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	return req, nil
}

func (r *repository) exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM identity_verifications WHERE id = $1)`,
		id,
	)
	return exists, err
}
