package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	pkgkafka "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewCreated    = "dxeeworld.review.created"
	TopicReviewUpdated    = "dxeeworld.review.updated"
	TopicRatingRecomputed = "dxeeworld.rating.recomputed"
)

// Aggregate type constants.
const (
	AggregateTypeReview = "review"
	AggregateTypeRating = "rating"
)

// Source identifier for events originating from the review engine.
const SourceReviewEngine = "review-engine"

// ReviewCreatedData is the payload for a review.created event (full review
// snapshot). Employment years travel as strings so the end year's "present"
// sentinel and a concrete year share one field shape.
type ReviewCreatedData struct {
	ID                  string `json:"id"`
	CompanyID           string `json:"company_id"`
	EmploymentStatus    string `json:"employment_status"`
	EmploymentStartYear string `json:"employment_start_year"`
	EmploymentEndYear   string `json:"employment_end_year"`
	OverallRating       int    `json:"overall_rating"`
	LocaleOfSubmission  string `json:"locale_of_submission"`
	Title               string `json:"title"`
	Body                string `json:"body"`
}

// ReviewUpdatedData is the payload for a review.updated event. It carries
// both ratings so consumers can re-derive the incremental summary step.
type ReviewUpdatedData struct {
	ID              string `json:"id"`
	CompanyID       string `json:"company_id"`
	OldRating       int    `json:"old_rating"`
	NewRating       int    `json:"new_rating"`
	SnapshotVersion int    `json:"snapshot_version"`
}

// RatingRecomputedData is the payload for a rating.recomputed event.
type RatingRecomputedData struct {
	CompanyID   string `json:"company_id"`
	RatingSum   int64  `json:"rating_sum"`
	ReviewCount int    `json:"review_count"`
	Average     string `json:"average,omitempty"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review engine.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event with the full
// review snapshot.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:                  review.ID,
		CompanyID:           review.CompanyID,
		EmploymentStatus:    review.EmploymentStatus,
		EmploymentStartYear: review.EmploymentStartYear.String(),
		EmploymentEndYear:   review.EmploymentEndYear.String(),
		OverallRating:       review.OverallRating,
		LocaleOfSubmission:  review.LocaleOfSubmission,
		Title:               review.Title,
		Body:                review.Body,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceReviewEngine, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("company_id", review.CompanyID),
	)

	return nil
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, old, updated *domain.Review, snapshotVersion int) error {
	data := ReviewUpdatedData{
		ID:              updated.ID,
		CompanyID:       updated.CompanyID,
		OldRating:       old.OverallRating,
		NewRating:       updated.OverallRating,
		SnapshotVersion: snapshotVersion,
	}

	event, err := pkgkafka.NewEvent(TopicReviewUpdated, updated.ID, AggregateTypeReview, SourceReviewEngine, data)
	if err != nil {
		return fmt.Errorf("create review.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewUpdated, event); err != nil {
		return fmt.Errorf("publish review.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.updated event",
		slog.String("review_id", updated.ID),
		slog.String("company_id", updated.CompanyID),
		slog.Int("old_rating", old.OverallRating),
		slog.Int("new_rating", updated.OverallRating),
	)

	return nil
}

// PublishRatingRecomputed publishes a rating.recomputed event with the
// rebuilt summary.
func (p *Producer) PublishRatingRecomputed(ctx context.Context, summary *domain.CompanyRatingSummary) error {
	data := RatingRecomputedData{
		CompanyID:   summary.CompanyID,
		RatingSum:   summary.RatingSum,
		ReviewCount: summary.ReviewCount,
		Average:     summary.AverageDisplay(),
	}

	event, err := pkgkafka.NewEvent(TopicRatingRecomputed, summary.CompanyID, AggregateTypeRating, SourceReviewEngine, data)
	if err != nil {
		return fmt.Errorf("create rating.recomputed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicRatingRecomputed, event); err != nil {
		return fmt.Errorf("publish rating.recomputed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published rating.recomputed event",
		slog.String("company_id", summary.CompanyID),
		slog.Int("review_count", summary.ReviewCount),
	)

	return nil
}
