package submission

import "time"

// Status is the moderation lifecycle state of a submission record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// IsTerminal reports whether the status is absorbing. Terminal records are
// never re-entered by the pipeline; redelivered events become no-ops.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition is allowed. Progression is
// strictly forward: pending may move to any terminal state and nothing else.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

// Record tracks one submitted item through the moderation lifecycle.
type Record struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	ContentType  string    `json:"content_type"`
	Bytes        int64     `json:"bytes"`
	OriginalName string    `json:"original_name,omitempty"`
	PublicURL    string    `json:"public_url,omitempty"` // set iff approved
	Reason       string    `json:"reason,omitempty"`     // set iff rejected
	Error        string    `json:"error,omitempty"`      // set iff failed
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatusUpdate is a merge-update: only non-zero fields are written, other
// record fields are left untouched.
type StatusUpdate struct {
	Status    Status
	PublicURL string
	Reason    string
	Error     string
}
