package responses

import (
	"time"

	domain "marketplace-server/services/moderation-api/internal/domain/submission"
)

// SubmissionResponse is the client-observable view of a submission record.
// A UI watches status; on rejected/failed it reads reason/error, on
// approved it reads public_url.
type SubmissionResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	PublicURL string    `json:"public_url,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromRecord maps a domain record to its response view.
func FromRecord(rec domain.Record) SubmissionResponse {
	return SubmissionResponse{
		ID:        rec.ID,
		Status:    string(rec.Status),
		PublicURL: rec.PublicURL,
		Reason:    rec.Reason,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
