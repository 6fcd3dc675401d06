package events

import (
	"time"

	"marketplace-server/services/moderation-api/internal/domain/submission"
)

const EventTypeObjectFinalized = "storage.object.finalized"

// Envelope is the wire format carried on the finalize topic.
type Envelope struct {
	ID        string                     `json:"id"`
	Type      string                     `json:"type"`
	Timestamp time.Time                  `json:"timestamp"`
	Object    submission.ObjectFinalized `json:"object"`
}
