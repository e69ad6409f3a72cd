package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts and RetryDelay are in-process retries of one publish.
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxRetries caps how many batches may fail an event before it is left
	// in FAILED for good.
	MaxRetries int
	Channel    string
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("outbox batch size must be greater than 0")
	case c.PollInterval <= 0:
		return fmt.Errorf("outbox poll interval must be greater than 0")
	case c.RetryAttempts <= 0:
		return fmt.Errorf("outbox retry attempts must be greater than 0")
	case c.RetryDelay < 0:
		return fmt.Errorf("outbox retry delay cannot be negative")
	case c.MaxRetries <= 0:
		return fmt.Errorf("outbox max retries must be greater than 0")
	case c.Channel == "":
		return fmt.Errorf("outbox channel is required")
	}
	return nil
}

// Publisher is the side of a messaging.Broker the processor needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, msg messaging.Message) error
}

// OutboxProcessor moves committed outbox rows onto the message bus.
// Delivery is at least once: a row is marked processed only after publish.
type OutboxProcessor struct {
	repo      repository.OutboxRepository
	publisher Publisher
	config    OutboxProcessorConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	publisher Publisher,
	config OutboxProcessorConfig,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &OutboxProcessor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	log.Info().Str("channel", p.config.Channel).Msg("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process outbox events")
			}
		}
	}
}

// ProcessBatch claims one batch and publishes it, returning how many
// events were published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	events, err := p.repo.GetPendingEventsWithLock(ctx, p.config.BatchSize, p.config.MaxRetries)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Int("retry_count", event.RetryCount).
				Msg("failed to publish outbox event")
			continue
		}
		published++
	}
	return published, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	msg := messaging.Message{
		ID:         event.ID,
		Type:       event.EventType,
		Payload:    event.Payload,
		OccurredAt: event.CreatedAt,
	}

	err := p.retry(ctx, event.EventType, func() error {
		return p.publisher.Publish(ctx, p.config.Channel, msg)
	})
	if err != nil {
		p.metrics.OutboxFailed(event.EventType)
		if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			log.Error().Err(markErr).Str("event_id", event.ID.String()).Msg("failed to mark outbox event failed")
		}
		return err
	}

	p.metrics.OutboxProcessed(event.EventType, p.now().Sub(event.CreatedAt).Seconds())
	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("published but not marked processed: %w", err)
	}
	return nil
}

func (p *OutboxProcessor) retry(ctx context.Context, eventType string, fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if i > 0 {
			p.metrics.OutboxRetried(eventType)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
