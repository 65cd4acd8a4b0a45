package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/database"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
)

// CompanyRepository implements repository.CompanyRepository using PostgreSQL.
type CompanyRepository struct {
	db database.DBTX
}

// NewCompanyRepository creates a new PostgreSQL-backed company repository.
func NewCompanyRepository(db database.DBTX) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a new company.
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, slug, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Slug,
		company.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "companies_slug_key") {
				return apperrors.AlreadyExists("company", "slug", company.Slug)
			}
			return apperrors.AlreadyExists("company", "name", company.Name)
		}
		return fmt.Errorf("insert company: %w", err)
	}

	return nil
}

// GetByID retrieves a company by its ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM companies
		WHERE id = $1`

	var company domain.Company
	err := r.db.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("company", id)
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}

	return &company, nil
}

// List returns companies matching the given filter with the total count.
func (r *CompanyRepository) List(ctx context.Context, filter repository.CompanyFilter) ([]domain.Company, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, *filter.Name)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at,
			   count(*) OVER() AS total_count
		FROM companies
		%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var totalCount int
	companies := make([]domain.Company, 0)

	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Slug,
			&company.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate company rows: %w", err)
	}

	return companies, totalCount, nil
}

// GetRatingSummary retrieves the stored rating summary for a company.
func (r *CompanyRepository) GetRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	query := `
		SELECT company_id, rating_sum, review_count, updated_at
		FROM company_rating_summaries
		WHERE company_id = $1`

	var summary domain.CompanyRatingSummary
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&summary.CompanyID,
		&summary.RatingSum,
		&summary.ReviewCount,
		&summary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("rating summary", companyID)
		}
		return nil, fmt.Errorf("scan rating summary: %w", err)
	}

	return &summary, nil
}

// GetRatingSummaryForUpdate retrieves the rating summary under a row lock.
// The zeroed row is created first if the company has none, so the lock
// always has a target and the first two concurrent reviews of a company
// still serialize. Must run inside a transaction.
func (r *CompanyRepository) GetRatingSummaryForUpdate(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	seedQuery := `
		INSERT INTO company_rating_summaries (company_id, rating_sum, review_count, updated_at)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (company_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, seedQuery, companyID, time.Now().UTC()); err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("company", companyID)
		}
		return nil, fmt.Errorf("seed rating summary: %w", err)
	}

	lockQuery := `
		SELECT company_id, rating_sum, review_count, updated_at
		FROM company_rating_summaries
		WHERE company_id = $1
		FOR UPDATE`

	var summary domain.CompanyRatingSummary
	err := r.db.QueryRow(ctx, lockQuery, companyID).Scan(
		&summary.CompanyID,
		&summary.RatingSum,
		&summary.ReviewCount,
		&summary.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock rating summary: %w", err)
	}

	return &summary, nil
}

// SaveRatingSummary upserts the rating summary.
func (r *CompanyRepository) SaveRatingSummary(ctx context.Context, summary *domain.CompanyRatingSummary) error {
	query := `
		INSERT INTO company_rating_summaries (company_id, rating_sum, review_count, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE
		SET rating_sum = EXCLUDED.rating_sum, review_count = EXCLUDED.review_count, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		summary.CompanyID,
		summary.RatingSum,
		summary.ReviewCount,
		summary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save rating summary: %w", err)
	}

	return nil
}

// RecomputeRatingSummary rebuilds the summary from the current review set.
// The result is not persisted; callers decide whether to save it.
func (r *CompanyRepository) RecomputeRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error) {
	query := `
		SELECT COALESCE(SUM(overall_rating), 0), COUNT(*)
		FROM reviews
		WHERE company_id = $1`

	summary := domain.CompanyRatingSummary{
		CompanyID: companyID,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&summary.RatingSum,
		&summary.ReviewCount,
	)
	if err != nil {
		return nil, fmt.Errorf("recompute rating summary: %w", err)
	}

	return &summary, nil
}

var _ repository.CompanyRepository = (*CompanyRepository)(nil)
