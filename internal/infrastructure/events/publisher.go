package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/submission"
)

// FinalizePublisher emits object-finalized events to the finalize topic.
type FinalizePublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewFinalizePublisher(cfg *config.Config, log zerolog.Logger) *FinalizePublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFinalizeTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &FinalizePublisher{
		writer: writer,
		log:    log.With().Str("component", "finalize-publisher").Logger(),
	}
}

func (p *FinalizePublisher) PublishObjectFinalized(ctx context.Context, ev submission.ObjectFinalized) error {
	envelope := Envelope{
		ID:        uuid.New().String(),
		Type:      EventTypeObjectFinalized,
		Timestamp: time.Now().UTC(),
		Object:    ev,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal finalize event: %w", err)
	}

	message := kafka.Message{
		// Key by object key so redeliveries of one object stay ordered.
		Key:   []byte(ev.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(envelope.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish finalize event: %w", err)
	}

	p.log.Info().Str("event_id", envelope.ID).Str("key", ev.Key).Msg("finalize event published")
	return nil
}

func (p *FinalizePublisher) Close() error {
	return p.writer.Close()
}
