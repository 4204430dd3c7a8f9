package verification

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var documentTypes = map[string]bool{
	"passport":        true,
	"residence_card":  true,
	"national_id":     true,
	"drivers_license": true,
}

func ValidDocumentType(documentType string) bool {
	return documentTypes[documentType]
}

func ValidDecision(decision string) bool {
	return decision == StatusApproved || decision == StatusRejected || decision == StatusPending
}

// VerificationRequest is the single current KYC submission for a user. Front
// and back refs are opaque keys into external blob storage; the service never
// sees document bytes.
type VerificationRequest struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	DocumentType string     `db:"document_type" json:"document_type"`
	FrontRef     string     `db:"front_ref" json:"front_ref"`
	BackRef      *string    `db:"back_ref" json:"back_ref,omitempty"`
	Status       string     `db:"status" json:"status"`
	AdminNotes   *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	SubmittedAt  time.Time  `db:"submitted_at" json:"submitted_at"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewerID   *int       `db:"reviewer_id" json:"reviewer_id,omitempty"`
}

func (v *VerificationRequest) Terminal() bool {
	return v.Status == StatusApproved || v.Status == StatusRejected
}
