package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/submission"
)

// Handler processes one finalized object. It carries no error return: each
// delivery gets exactly one processing attempt, and the pipeline contains
// its own failures.
type Handler func(ctx context.Context, ev submission.ObjectFinalized)

// FinalizeConsumer pulls object-finalized events off the finalize topic and
// hands each to the handler once.
type FinalizeConsumer struct {
	reader *kafka.Reader
	log    zerolog.Logger
}

func NewFinalizeConsumer(cfg *config.Config, log zerolog.Logger) *FinalizeConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaFinalizeTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &FinalizeConsumer{
		reader: reader,
		log:    log.With().Str("component", "finalize-consumer").Logger(),
	}
}

// Consume runs until the context is cancelled. Every fetched message is
// committed regardless of what the handler did with it: a redelivery would
// mean a second processing attempt, which the at-most-once contract rules
// out.
func (c *FinalizeConsumer) Consume(ctx context.Context, handler Handler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("failed to fetch message")
			continue
		}

		var envelope Envelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			c.log.Error().Err(err).Msg("malformed finalize event, dropping")
		} else if envelope.Type != EventTypeObjectFinalized {
			c.log.Warn().Str("type", envelope.Type).Msg("unexpected event type, dropping")
		} else {
			handler(ctx, envelope.Object)
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			c.log.Error().Err(err).Msg("failed to commit message")
		}
	}
}

func (c *FinalizeConsumer) Close() error {
	return c.reader.Close()
}
