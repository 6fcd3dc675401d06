package handlers

import (
	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	domain "marketplace-server/services/moderation-api/internal/domain/submission"
)

// Provider wires HTTP handlers.
type Provider struct {
	Submission *SubmissionHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Submission: NewSubmissionHandler(cfg, service, log),
	}
}
