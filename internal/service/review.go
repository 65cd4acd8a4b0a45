package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/event"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/i18n"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository/rediscache"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// DefaultActor is recorded as the editor on review history snapshots when no
// authenticated actor is known.
const DefaultActor = "anonymous"

// ReviewService implements the business logic for review submission, edits,
// and reads. Every write runs inside one transaction together with the
// owning company's rating summary update, so a review and its rating effect
// are never visible separately.
type ReviewService struct {
	reviews   repository.ReviewRepository
	companies repository.CompanyRepository
	tx        repository.TxManager
	cache     *rediscache.SummaryCache
	producer  *event.Producer
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	companies repository.CompanyRepository,
	tx repository.TxManager,
	cache *rediscache.SummaryCache,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		companies: companies,
		tx:        tx,
		cache:     cache,
		producer:  producer,
		logger:    logger,
	}
}

// CreateReviewInput holds the parameters for submitting a review.
type CreateReviewInput struct {
	CompanyID           string
	EmploymentStatus    string
	EmploymentStartYear domain.YearField
	EmploymentEndYear   domain.YearField
	OverallRating       int
	LocaleOfSubmission  string
	Title               string
	Body                string
}

// CreateReview validates and persists a new review, folding its rating into
// the company's summary within the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.CompanyID == "" {
		return nil, apperrors.InvalidInput("company_id is required")
	}
	if !domain.IsValidEmploymentStatus(input.EmploymentStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid employment_status %q, must be one of: %s", input.EmploymentStatus, strings.Join(domain.ValidEmploymentStatuses(), ", ")))
	}
	if !domain.IsValidRating(input.OverallRating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("overall_rating must be between %d and %d", domain.RatingMin, domain.RatingMax))
	}
	if !i18n.IsSupported(i18n.Locale(input.LocaleOfSubmission)) {
		return nil, apperrors.UnsupportedLocale(input.LocaleOfSubmission)
	}

	currentYear := time.Now().UTC().Year()
	if kinds := domain.ValidateEmploymentPeriod(input.EmploymentStatus, input.EmploymentStartYear, input.EmploymentEndYear, currentYear); len(kinds) > 0 {
		return nil, apperrors.ValidationFailed(domain.NewValidationError(kinds))
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:                  uuid.New().String(),
		CompanyID:           input.CompanyID,
		EmploymentStatus:    input.EmploymentStatus,
		EmploymentStartYear: input.EmploymentStartYear,
		EmploymentEndYear:   domain.NormalizeEndYear(input.EmploymentStatus, input.EmploymentEndYear),
		OverallRating:       input.OverallRating,
		LocaleOfSubmission:  input.LocaleOfSubmission,
		Title:               strings.TrimSpace(input.Title),
		Body:                input.Body,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var summary *domain.CompanyRatingSummary
	err := s.tx.WithinTx(ctx, func(reviews repository.ReviewRepository, companies repository.CompanyRepository) error {
		if err := reviews.Create(ctx, review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		locked, err := companies.GetRatingSummaryForUpdate(ctx, review.CompanyID)
		if err != nil {
			return fmt.Errorf("lock rating summary: %w", err)
		}
		locked.ApplyCreate(review.OverallRating)
		locked.UpdatedAt = now

		verified, err := s.verifySummary(ctx, companies, locked, "create")
		if err != nil {
			return err
		}
		if err := companies.SaveRatingSummary(ctx, verified); err != nil {
			return fmt.Errorf("save rating summary: %w", err)
		}
		summary = verified
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh rating summary cache",
			slog.String("company_id", review.CompanyID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("company_id", review.CompanyID),
		slog.Int("overall_rating", review.OverallRating),
		slog.String("locale", review.LocaleOfSubmission),
	)

	return review, nil
}

// UpdateReviewInput holds the parameters for editing a review. Nil fields
// keep their stored value; the merged result is validated as a whole.
type UpdateReviewInput struct {
	EmploymentStatus    *string
	EmploymentStartYear *domain.YearField
	EmploymentEndYear   *domain.YearField
	OverallRating       *int
	LocaleOfSubmission  *string
	Title               *string
	Body                *string
}

// UpdateReview edits an existing review. The pre-edit state is captured as
// an append-only history snapshot before the overwrite, and the rating
// summary absorbs the rating delta, all within one transaction. editedBy
// identifies the actor for the snapshot; empty falls back to DefaultActor.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, input UpdateReviewInput, editedBy string) (*domain.Review, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("review id is required")
	}
	if input.EmploymentStatus != nil && !domain.IsValidEmploymentStatus(*input.EmploymentStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid employment_status %q, must be one of: %s", *input.EmploymentStatus, strings.Join(domain.ValidEmploymentStatuses(), ", ")))
	}
	if input.OverallRating != nil && !domain.IsValidRating(*input.OverallRating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("overall_rating must be between %d and %d", domain.RatingMin, domain.RatingMax))
	}
	if input.LocaleOfSubmission != nil && !i18n.IsSupported(i18n.Locale(*input.LocaleOfSubmission)) {
		return nil, apperrors.UnsupportedLocale(*input.LocaleOfSubmission)
	}
	if editedBy == "" {
		editedBy = DefaultActor
	}

	var (
		prior   domain.Review
		updated *domain.Review
		summary *domain.CompanyRatingSummary
		version int
	)
	err := s.tx.WithinTx(ctx, func(reviews repository.ReviewRepository, companies repository.CompanyRepository) error {
		current, err := reviews.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get review for update: %w", err)
		}
		prior = *current

		next := *current
		applyReviewUpdate(&next, input)

		currentYear := time.Now().UTC().Year()
		if kinds := domain.ValidateEmploymentPeriod(next.EmploymentStatus, next.EmploymentStartYear, next.EmploymentEndYear, currentYear); len(kinds) > 0 {
			return apperrors.ValidationFailed(domain.NewValidationError(kinds))
		}
		next.EmploymentEndYear = domain.NormalizeEndYear(next.EmploymentStatus, next.EmploymentEndYear)

		now := time.Now().UTC()
		next.UpdatedAt = now

		// Capture the pre-edit state before anything overwrites it.
		snapshot := domain.SnapshotOf(&prior, editedBy, now)
		snapshot.ID = uuid.New().String()
		if err := reviews.AppendHistorySnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("append history snapshot: %w", err)
		}
		version = snapshot.Version

		if err := reviews.Update(ctx, &next); err != nil {
			return fmt.Errorf("update review: %w", err)
		}

		locked, err := companies.GetRatingSummaryForUpdate(ctx, next.CompanyID)
		if err != nil {
			return fmt.Errorf("lock rating summary: %w", err)
		}
		locked.ApplyUpdate(prior.OverallRating, next.OverallRating)
		locked.UpdatedAt = now

		verified, err := s.verifySummary(ctx, companies, locked, "update")
		if err != nil {
			return err
		}
		if err := companies.SaveRatingSummary(ctx, verified); err != nil {
			return fmt.Errorf("save rating summary: %w", err)
		}

		updated = &next
		summary = verified
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh rating summary cache",
			slog.String("company_id", updated.CompanyID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewUpdated(ctx, &prior, updated, version); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", updated.ID),
		slog.String("company_id", updated.CompanyID),
		slog.Int("snapshot_version", version),
		slog.String("edited_by", editedBy),
	)

	return updated, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListReviews returns a filtered, paginated list of a company's reviews.
// The company must exist; listing an unknown company is not an empty list.
func (s *ReviewService) ListReviews(ctx context.Context, companyID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, 0, fmt.Errorf("get company for review listing: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	reviews, total, err := s.reviews.ListByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

// ListHistory returns a review's edit history snapshots ordered by version,
// oldest first.
func (s *ReviewService) ListHistory(ctx context.Context, reviewID string) ([]domain.ReviewHistorySnapshot, error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, fmt.Errorf("get review for history listing: %w", err)
	}

	snapshots, err := s.reviews.ListHistorySnapshots(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list history snapshots: %w", err)
	}
	return snapshots, nil
}

// verifySummary recomputes the summary from the full review set inside the
// same transaction and compares it with the incrementally updated one. On
// divergence the recomputed values win: the mismatch is logged and counted,
// never silently persisted.
func (s *ReviewService) verifySummary(ctx context.Context, companies repository.CompanyRepository, incremental *domain.CompanyRatingSummary, operation string) (*domain.CompanyRatingSummary, error) {
	recomputed, err := companies.RecomputeRatingSummary(ctx, incremental.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("verify rating summary: %w", err)
	}
	if incremental.Equal(recomputed) {
		return incremental, nil
	}

	aggregationInconsistencies.WithLabelValues(operation).Inc()
	s.logger.ErrorContext(ctx, "incremental rating summary diverged from recompute",
		slog.String("company_id", incremental.CompanyID),
		slog.String("operation", operation),
		slog.Int64("incremental_sum", incremental.RatingSum),
		slog.Int("incremental_count", incremental.ReviewCount),
		slog.Int64("recomputed_sum", recomputed.RatingSum),
		slog.Int("recomputed_count", recomputed.ReviewCount),
	)
	return recomputed, nil
}

// applyReviewUpdate merges the non-nil input fields onto the review.
func applyReviewUpdate(r *domain.Review, input UpdateReviewInput) {
	if input.EmploymentStatus != nil {
		r.EmploymentStatus = *input.EmploymentStatus
	}
	if input.EmploymentStartYear != nil {
		r.EmploymentStartYear = *input.EmploymentStartYear
	}
	if input.EmploymentEndYear != nil {
		r.EmploymentEndYear = *input.EmploymentEndYear
	}
	if input.OverallRating != nil {
		r.OverallRating = *input.OverallRating
	}
	if input.LocaleOfSubmission != nil {
		r.LocaleOfSubmission = *input.LocaleOfSubmission
	}
	if input.Title != nil {
		r.Title = strings.TrimSpace(*input.Title)
	}
	if input.Body != nil {
		r.Body = *input.Body
	}
}
