package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/event"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository/rediscache"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// RatingService implements the read and rebuild paths for company rating
// summaries. Reads go through the Redis cache; a degraded cache falls back
// to the store.
type RatingService struct {
	companies repository.CompanyRepository
	tx        repository.TxManager
	cache     *rediscache.SummaryCache
	producer  *event.Producer
	logger    *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(
	companies repository.CompanyRepository,
	tx repository.TxManager,
	cache *rediscache.SummaryCache,
	producer *event.Producer,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		companies: companies,
		tx:        tx,
		cache:     cache,
		producer:  producer,
		logger:    logger,
	}
}

// GetRatingSummary returns a company's rating summary, serving from cache
// when possible. A company that exists but has no reviews yet reports as
// not found, matching a company with no summary row at all.
func (s *RatingService) GetRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("company id is required")
	}

	cached, err := s.cache.Get(ctx, companyID)
	if err != nil {
		s.logger.WarnContext(ctx, "rating summary cache read degraded",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	} else if cached != nil {
		if cached.ReviewCount == 0 {
			return nil, apperrors.NotFound("rating summary", companyID)
		}
		return cached, nil
	}

	summary, err := s.companies.GetRatingSummary(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}
	if summary.ReviewCount == 0 {
		return nil, apperrors.NotFound("rating summary", companyID)
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.DebugContext(ctx, "failed to populate rating summary cache",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

// RecomputeRatingSummary rebuilds a company's summary from its full review
// set and persists the result, replacing whatever the incremental path has
// accumulated. The rebuild locks the summary row so it serializes with
// concurrent review writes.
func (s *RatingService) RecomputeRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("company id is required")
	}

	var summary *domain.CompanyRatingSummary
	err := s.tx.WithinTx(ctx, func(_ repository.ReviewRepository, companies repository.CompanyRepository) error {
		if _, err := companies.GetRatingSummaryForUpdate(ctx, companyID); err != nil {
			return fmt.Errorf("lock rating summary: %w", err)
		}

		recomputed, err := companies.RecomputeRatingSummary(ctx, companyID)
		if err != nil {
			return fmt.Errorf("recompute rating summary: %w", err)
		}
		recomputed.UpdatedAt = time.Now().UTC()

		if err := companies.SaveRatingSummary(ctx, recomputed); err != nil {
			return fmt.Errorf("save rating summary: %w", err)
		}
		summary = recomputed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh rating summary cache",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishRatingRecomputed(ctx, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish rating.recomputed event",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "rating summary recomputed",
		slog.String("company_id", companyID),
		slog.Int64("rating_sum", summary.RatingSum),
		slog.Int("review_count", summary.ReviewCount),
	)

	return summary, nil
}
