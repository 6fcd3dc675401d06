package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/internal/infrastructure/database/entities"
)

// ErrAlreadyExists is returned when a record id is created twice. Ids are
// generated collision-free, so hitting this indicates a caller bug.
var ErrAlreadyExists = errors.New("submission record already exists")

const changeChannelPrefix = "submission.changes."

// Repository persists submission records in postgres and publishes every
// committed change to a per-record redis channel for subscribers.
type Repository struct {
	db    *gorm.DB
	redis *redis.Client
	log   zerolog.Logger
}

func NewRepository(db *gorm.DB, redisClient *redis.Client, log zerolog.Logger) *Repository {
	return &Repository{
		db:    db,
		redis: redisClient,
		log:   log.With().Str("component", "submission-repository").Logger(),
	}
}

func (r *Repository) Create(ctx context.Context, rec *domain.Record) error {
	entity := entities.Submission{
		ID:           rec.ID,
		Status:       string(rec.Status),
		ContentType:  rec.ContentType,
		Bytes:        rec.Bytes,
		OriginalName: rec.OriginalName,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, rec.ID)
		}
		return fmt.Errorf("create submission: %w", err)
	}
	rec.CreatedAt = entity.CreatedAt
	rec.UpdatedAt = entity.UpdatedAt
	r.publish(ctx, rec.ID)
	return nil
}

// GetByID returns the record, or nil when the id is unknown.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	var entity entities.Submission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	rec := mapEntity(entity)
	return &rec, nil
}

// Finalize merge-updates only the fields named in upd, preconditioned on
// the record still being pending. applied=false means the record is
// missing or already terminal; that is not an error, terminal states are
// absorbing and redelivered events must stay harmless.
func (r *Repository) Finalize(ctx context.Context, id string, upd domain.StatusUpdate) (bool, error) {
	if !domain.StatusPending.CanTransitionTo(upd.Status) {
		return false, fmt.Errorf("invalid terminal status %q", upd.Status)
	}

	fields := map[string]interface{}{"status": string(upd.Status)}
	if upd.PublicURL != "" {
		fields["public_url"] = upd.PublicURL
	}
	if upd.Reason != "" {
		fields["reason"] = upd.Reason
	}
	if upd.Error != "" {
		fields["error"] = upd.Error
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Updates(fields)
	if res.Error != nil {
		return false, fmt.Errorf("finalize submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.publish(ctx, id)
	return true, nil
}

// Subscribe delivers every committed state of the record after the initial
// read until the context is cancelled.
func (r *Repository) Subscribe(ctx context.Context, id string) (<-chan domain.Record, error) {
	sub := r.redis.Subscribe(ctx, changeChannelPrefix+id)
	// Force the subscription onto the wire before returning so callers
	// cannot miss a change committed right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe submission %s: %w", id, err)
	}

	out := make(chan domain.Record, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var rec domain.Record
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					r.log.Warn().Err(err).Str("id", id).Msg("malformed change payload")
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// publish reads the fresh row and fans it out; a publish failure never
// fails the write that triggered it.
func (r *Repository) publish(ctx context.Context, id string) {
	rec, err := r.GetByID(ctx, id)
	if err != nil || rec == nil {
		r.log.Warn().Err(err).Str("id", id).Msg("could not load record for change feed")
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("could not encode change payload")
		return
	}
	if err := r.redis.Publish(ctx, changeChannelPrefix+id, payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("id", id).Msg("could not publish change")
	}
}

func mapEntity(entity entities.Submission) domain.Record {
	return domain.Record{
		ID:           entity.ID,
		Status:       domain.Status(entity.Status),
		ContentType:  entity.ContentType,
		Bytes:        entity.Bytes,
		OriginalName: entity.OriginalName,
		PublicURL:    entity.PublicURL,
		Reason:       entity.Reason,
		Error:        entity.Error,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}
