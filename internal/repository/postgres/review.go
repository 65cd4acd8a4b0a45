package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/database"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
//
// Employment years are stored in two shapes: the start year as an integer
// (validation guarantees it is numeric before any write) and the end year as
// text holding either a year or the "present" sentinel, so the stored value
// round-trips through domain.YearFromString without loss.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	startYear, ok := review.EmploymentStartYear.Int()
	if !ok {
		return fmt.Errorf("review %s has non-numeric start year %q", review.ID, review.EmploymentStartYear.String())
	}

	query := `
		INSERT INTO reviews (id, company_id, employment_status, employment_start_year, employment_end_year, overall_rating, locale_of_submission, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.CompanyID,
		review.EmploymentStatus,
		startYear,
		review.EmploymentEndYear.String(),
		review.OverallRating,
		review.LocaleOfSubmission,
		review.Title,
		review.Body,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("company", review.CompanyID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// Update overwrites an existing review's mutable fields.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	startYear, ok := review.EmploymentStartYear.Int()
	if !ok {
		return fmt.Errorf("review %s has non-numeric start year %q", review.ID, review.EmploymentStartYear.String())
	}

	query := `
		UPDATE reviews
		SET employment_status = $1, employment_start_year = $2, employment_end_year = $3, overall_rating = $4, locale_of_submission = $5, title = $6, body = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		review.EmploymentStatus,
		startYear,
		review.EmploymentEndYear.String(),
		review.OverallRating,
		review.LocaleOfSubmission,
		review.Title,
		review.Body,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT id, company_id, employment_status, employment_start_year, employment_end_year, overall_rating, locale_of_submission, title, body, created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var (
		review    domain.Review
		startYear int
		endYear   string
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.CompanyID,
		&review.EmploymentStatus,
		&startYear,
		&endYear,
		&review.OverallRating,
		&review.LocaleOfSubmission,
		&review.Title,
		&review.Body,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	review.EmploymentStartYear = domain.Year(startYear)
	review.EmploymentEndYear = domain.YearFromString(endYear)

	return &review, nil
}

// ListByCompany returns a company's reviews matching the filter with the
// total count.
func (r *ReviewRepository) ListByCompany(ctx context.Context, companyID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	conditions := []string{"company_id = $1"}
	args := []any{companyID}
	argIndex := 2

	if filter.EmploymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("employment_status = $%d", argIndex))
		args = append(args, *filter.EmploymentStatus)
		argIndex++
	}

	if filter.Locale != nil {
		conditions = append(conditions, fmt.Sprintf("locale_of_submission = $%d", argIndex))
		args = append(args, *filter.Locale)
		argIndex++
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, company_id, employment_status, employment_start_year, employment_end_year, overall_rating, locale_of_submission, title, body, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM reviews
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var (
			review    domain.Review
			startYear int
			endYear   string
		)

		if err := rows.Scan(
			&review.ID,
			&review.CompanyID,
			&review.EmploymentStatus,
			&startYear,
			&endYear,
			&review.OverallRating,
			&review.LocaleOfSubmission,
			&review.Title,
			&review.Body,
			&review.CreatedAt,
			&review.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		review.EmploymentStartYear = domain.Year(startYear)
		review.EmploymentEndYear = domain.YearFromString(endYear)

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}

// AppendHistorySnapshot persists a pre-edit snapshot. The version is
// computed as max(version)+1 for the review inside the insert itself, so
// two concurrent edits of the same review collide on the (review_id,
// version) unique constraint and the loser's transaction fails with a
// conflict instead of silently reusing a version.
func (r *ReviewRepository) AppendHistorySnapshot(ctx context.Context, snapshot *domain.ReviewHistorySnapshot) error {
	startYear, ok := snapshot.EmploymentStartYear.Int()
	if !ok {
		return fmt.Errorf("snapshot of review %s has non-numeric start year %q", snapshot.ReviewID, snapshot.EmploymentStartYear.String())
	}

	query := `
		INSERT INTO review_history_snapshots (id, review_id, version, company_id, employment_status, employment_start_year, employment_end_year, overall_rating, locale_of_submission, title, body, edited_by, edited_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(version), 0) + 1 FROM review_history_snapshots WHERE review_id = $2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING version`

	err := r.db.QueryRow(ctx, query,
		snapshot.ID,
		snapshot.ReviewID,
		snapshot.CompanyID,
		snapshot.EmploymentStatus,
		startYear,
		snapshot.EmploymentEndYear.String(),
		snapshot.OverallRating,
		snapshot.LocaleOfSubmission,
		snapshot.Title,
		snapshot.Body,
		snapshot.EditedBy,
		snapshot.EditedAt,
	).Scan(&snapshot.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append history snapshot for review %s: %w", snapshot.ReviewID, apperrors.ErrConflict)
		}
		return fmt.Errorf("append history snapshot: %w", err)
	}

	return nil
}

// ListHistorySnapshots returns a review's snapshots ordered by version.
func (r *ReviewRepository) ListHistorySnapshots(ctx context.Context, reviewID string) ([]domain.ReviewHistorySnapshot, error) {
	query := `
		SELECT id, review_id, version, company_id, employment_status, employment_start_year, employment_end_year, overall_rating, locale_of_submission, title, body, edited_by, edited_at
		FROM review_history_snapshots
		WHERE review_id = $1
		ORDER BY version ASC`

	rows, err := r.db.Query(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list history snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.ReviewHistorySnapshot, 0)

	for rows.Next() {
		var (
			s         domain.ReviewHistorySnapshot
			startYear int
			endYear   string
		)

		if err := rows.Scan(
			&s.ID,
			&s.ReviewID,
			&s.Version,
			&s.CompanyID,
			&s.EmploymentStatus,
			&startYear,
			&endYear,
			&s.OverallRating,
			&s.LocaleOfSubmission,
			&s.Title,
			&s.Body,
			&s.EditedBy,
			&s.EditedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history snapshot row: %w", err)
		}

		s.EmploymentStartYear = domain.Year(startYear)
		s.EmploymentEndYear = domain.YearFromString(endYear)

		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history snapshot rows: %w", err)
	}

	return snapshots, nil
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
