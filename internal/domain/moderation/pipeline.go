package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/metrics"
)

// Records is the slice of the record store the pipeline writes through.
// Finalize is a merge-update preconditioned on the record still being
// pending; applied=false means there was nothing to update (missing record
// or an already-terminal one).
type Records interface {
	Finalize(ctx context.Context, id string, upd submission.StatusUpdate) (applied bool, err error)
}

// Blobs is the slice of the blob store the pipeline consumes.
type Blobs interface {
	FetchBytes(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ResolvePublicURL(ctx context.Context, key string) (string, error)
}

// Classifier scores raw image bytes. One attempt per call, no retries.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (SafetyVerdict, error)
}

// Outcome is the terminal result of one pipeline invocation.
type Outcome string

const (
	// OutcomeSkipped: the event was not applicable (non-image object or a
	// key that does not name a submission).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeStale: the decision was computed but the record was missing
	// or already terminal, so nothing was written.
	OutcomeStale    Outcome = "stale"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Pipeline reacts to object-finalized events: it fetches the stored bytes,
// classifies them, applies the decision policy, and moves the submission
// record to its terminal status.
type Pipeline struct {
	cfg        *config.Config
	records    Records
	blobs      Blobs
	classifier Classifier
	log        zerolog.Logger
}

func NewPipeline(cfg *config.Config, records Records, blobs Blobs, classifier Classifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		records:    records,
		blobs:      blobs,
		classifier: classifier,
		log:        log.With().Str("component", "moderation-pipeline").Logger(),
	}
}

// Process runs one moderation attempt for a finalized object. It never
// returns an error: every failure is contained here and reflected in the
// record's status, so the triggering infrastructure never sees a fault it
// could retry into duplicate processing.
func (p *Pipeline) Process(ctx context.Context, ev submission.ObjectFinalized) Outcome {
	start := time.Now()
	outcome := p.process(ctx, ev)
	metrics.RecordModeration(string(outcome), time.Since(start).Seconds())
	return outcome
}

func (p *Pipeline) process(ctx context.Context, ev submission.ObjectFinalized) Outcome {
	if !ev.IsImage() {
		p.log.Debug().Str("key", ev.Key).Str("content_type", ev.ContentType).Msg("not an image, skipping")
		return OutcomeSkipped
	}

	id, err := submission.ParseObjectKey(p.cfg.UploadPrefix, ev.Key)
	if err != nil {
		p.log.Warn().Err(err).Str("key", ev.Key).Msg("finalized object does not name a submission")
		return OutcomeSkipped
	}
	log := p.log.With().Str("id", id).Str("key", ev.Key).Logger()

	data, err := p.blobs.FetchBytes(ctx, ev.Key)
	if err != nil {
		return p.fail(ctx, log, id, "fetch object", err)
	}

	verdict, err := p.classifier.Classify(ctx, data)
	if err != nil {
		return p.fail(ctx, log, id, "classify image", err)
	}
	log.Info().Stringer("verdict", verdict).Msg("classification complete")

	if IsUnsafe(verdict) {
		// Destructive action first: the unsafe blob must not stay
		// retrievable even if the record write below fails.
		if err := p.blobs.Delete(ctx, ev.Key); err != nil {
			return p.fail(ctx, log, id, "delete unsafe object", err)
		}
		applied, err := p.records.Finalize(ctx, id, submission.StatusUpdate{
			Status: submission.StatusRejected,
			Reason: RejectionReason,
		})
		if err != nil {
			return p.fail(ctx, log, id, "record rejection", err)
		}
		if !applied {
			log.Warn().Msg("no pending record to reject")
			return OutcomeStale
		}
		log.Info().Msg("submission rejected")
		return OutcomeRejected
	}

	url, err := p.blobs.ResolvePublicURL(ctx, ev.Key)
	if err != nil {
		return p.fail(ctx, log, id, "resolve public url", err)
	}
	applied, err := p.records.Finalize(ctx, id, submission.StatusUpdate{
		Status:    submission.StatusApproved,
		PublicURL: url,
	})
	if err != nil {
		return p.fail(ctx, log, id, "record approval", err)
	}
	if !applied {
		log.Warn().Msg("no pending record to approve")
		return OutcomeStale
	}
	log.Info().Msg("submission approved")
	return OutcomeApproved
}

// fail makes exactly one best-effort write of the failed status. If that
// write itself errors the failure is only logged; nothing propagates.
func (p *Pipeline) fail(ctx context.Context, log zerolog.Logger, id, step string, cause error) Outcome {
	log.Error().Err(cause).Str("step", step).Msg("moderation failed")
	applied, err := p.records.Finalize(ctx, id, submission.StatusUpdate{
		Status: submission.StatusFailed,
		Error:  step + ": " + cause.Error(),
	})
	if err != nil {
		log.Error().Err(err).Msg("could not record failure")
	} else if !applied {
		log.Warn().Msg("no pending record to mark failed")
	}
	return OutcomeFailed
}
