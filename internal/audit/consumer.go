package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/event"
	pkgkafka "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/kafka"
)

// ConsumerGroupID is the Kafka consumer group for the rating audit.
const ConsumerGroupID = "review-audit"

// Consumer routes review events to the auditor. Every review write triggers
// a re-verification of the owning company's summary.
type Consumer struct {
	auditor *Auditor
	logger  *slog.Logger
}

// NewConsumer creates a new audit event consumer.
func NewConsumer(auditor *Auditor, logger *slog.Logger) *Consumer {
	return &Consumer{
		auditor: auditor,
		logger:  logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (c *Consumer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case event.TopicReviewCreated:
		return c.handleReviewCreated(ctx, evt)
	case event.TopicReviewUpdated:
		return c.handleReviewUpdated(ctx, evt)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", evt.EventType),
			slog.String("event_id", evt.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleReviewCreated(ctx context.Context, evt *pkgkafka.Event) error {
	var data event.ReviewCreatedData
	if err := evt.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal review.created data: %w", err)
	}

	if err := c.auditor.Verify(ctx, data.CompanyID); err != nil {
		return fmt.Errorf("verify summary from review.created event: %w", err)
	}

	c.logger.InfoContext(ctx, "audited summary from review.created event",
		slog.String("review_id", data.ID),
		slog.String("company_id", data.CompanyID),
	)
	return nil
}

func (c *Consumer) handleReviewUpdated(ctx context.Context, evt *pkgkafka.Event) error {
	var data event.ReviewUpdatedData
	if err := evt.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal review.updated data: %w", err)
	}

	if err := c.auditor.Verify(ctx, data.CompanyID); err != nil {
		return fmt.Errorf("verify summary from review.updated event: %w", err)
	}

	c.logger.InfoContext(ctx, "audited summary from review.updated event",
		slog.String("review_id", data.ID),
		slog.String("company_id", data.CompanyID),
	)
	return nil
}

// NewConsumers creates Kafka consumers for the review topics the audit
// subscribes to, each deduplicating deliveries through the shared
// idempotency store.
func NewConsumers(brokers []string, store pkgkafka.IdempotencyStore, handler *Consumer, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		event.TopicReviewCreated,
		event.TopicReviewUpdated,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}
		wrapped := pkgkafka.IdempotentHandler(store, topic, ConsumerGroupID, handler.Handle, logger)
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, wrapped, logger))
	}

	return consumers
}
