package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/utils/submissionid"
)

var allowedMIMEs = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	Subscribe(ctx context.Context, id string) (<-chan Record, error)
}

// Storage defines the blob upload operation needed by the service.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
}

// Publisher emits object-finalized events after a blob is stored.
type Publisher interface {
	PublishObjectFinalized(ctx context.Context, ev ObjectFinalized) error
}

// Service is the client-facing writer: it creates the pending record,
// stores the blob, and hands the finalize event to the pipeline's topic.
type Service struct {
	cfg       *config.Config
	repo      Repository
	storage   Storage
	publisher Publisher
	log       zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, publisher Publisher, log zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		log:       log.With().Str("component", "submission-service").Logger(),
	}
}

// Submit stores a new listing image and returns the pending record. The
// record is created before the blob upload so a finalize event can never
// fire without a record to update.
func (s *Service) Submit(ctx context.Context, data []byte, originalName string) (*Record, error) {
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size of %d bytes", s.cfg.MaxUploadBytes)
	}

	mimeType := mimetype.Detect(data).String()
	ext, ok := allowedMIMEs[mimeType]
	if !ok {
		return nil, fmt.Errorf("unsupported mime type %s", mimeType)
	}

	id := submissionid.New()
	rec := &Record{
		ID:           id,
		Status:       StatusPending,
		ContentType:  mimeType,
		Bytes:        int64(len(data)),
		OriginalName: originalName,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	key := ObjectKey(s.cfg.UploadPrefix, id, ext)
	metadata := map[string]string{"original-name": originalName}
	if err := s.storage.Upload(ctx, key, data, mimeType, metadata); err != nil {
		return nil, err
	}

	ev := ObjectFinalized{
		Key:         key,
		ContentType: mimeType,
		Bucket:      s.cfg.S3Bucket,
	}
	if err := s.publisher.PublishObjectFinalized(ctx, ev); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", id).Str("key", key).Msg("submission stored, awaiting moderation")
	return rec, nil
}

// Get returns the record for the given submission id, nil if unknown.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if !submissionid.IsValid(id) {
		return nil, fmt.Errorf("invalid submission id %s", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Watch streams committed record states until the context is cancelled.
func (s *Service) Watch(ctx context.Context, id string) (<-chan Record, error) {
	if !submissionid.IsValid(id) {
		return nil, fmt.Errorf("invalid submission id %s", id)
	}
	return s.repo.Subscribe(ctx, id)
}
