package repository

import (
	"context"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
)

// ReviewFilter defines filter criteria for listing a company's reviews.
type ReviewFilter struct {
	EmploymentStatus *string
	Locale           *string
	Page             int
	PerPage          int
}

// CompanyFilter defines filter criteria for listing companies.
type CompanyFilter struct {
	Name    *string
	Page    int
	PerPage int
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review.
	Create(ctx context.Context, review *domain.Review) error

	// Update overwrites an existing review's mutable fields.
	Update(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByCompany returns a company's reviews matching the filter along
	// with the total count.
	ListByCompany(ctx context.Context, companyID string, filter ReviewFilter) ([]domain.Review, int, error)

	// AppendHistorySnapshot persists a pre-edit snapshot, assigning the next
	// version number for the review and setting it on the snapshot. A
	// version collision from a concurrent edit of the same review surfaces
	// as a conflict.
	AppendHistorySnapshot(ctx context.Context, snapshot *domain.ReviewHistorySnapshot) error

	// ListHistorySnapshots returns a review's snapshots ordered by version.
	ListHistorySnapshots(ctx context.Context, reviewID string) ([]domain.ReviewHistorySnapshot, error)
}

// CompanyRepository defines the interface for company and rating-summary
// persistence operations.
type CompanyRepository interface {
	// Create inserts a new company.
	Create(ctx context.Context, company *domain.Company) error

	// GetByID retrieves a company by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Company, error)

	// List returns companies matching the filter along with the total count.
	List(ctx context.Context, filter CompanyFilter) ([]domain.Company, int, error)

	// GetRatingSummary retrieves the stored rating summary for a company.
	// Companies with no reviews yet have no summary.
	GetRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error)

	// GetRatingSummaryForUpdate retrieves the rating summary under a row
	// lock, creating a zeroed row first if the company has none. Must run
	// inside a transaction; concurrent writers for the same company block
	// here until the holder commits.
	GetRatingSummaryForUpdate(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error)

	// SaveRatingSummary upserts the rating summary.
	SaveRatingSummary(ctx context.Context, summary *domain.CompanyRatingSummary) error

	// RecomputeRatingSummary rebuilds the summary from the current review
	// set with a single aggregate query. It does not persist the result.
	RecomputeRatingSummary(ctx context.Context, companyID string) (*domain.CompanyRatingSummary, error)
}

// TxManager runs a function's repository calls within one database
// transaction.
type TxManager interface {
	// WithinTx begins a transaction, invokes fn with repositories bound to
	// it, and commits if fn returns nil. Any error rolls the whole
	// transaction back; a serialization failure surfaces as a conflict.
	WithinTx(ctx context.Context, fn func(ReviewRepository, CompanyRepository) error) error
}
