package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	apperrors "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/errors"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/slug"
)

// MaxCompanyNameLength bounds the company name in characters, not bytes, so
// CJK names get the same budget as ASCII ones.
const MaxCompanyNameLength = 200

// CompanyService implements the business logic for company operations.
type CompanyService struct {
	companies repository.CompanyRepository
	logger    *slog.Logger
}

// NewCompanyService creates a new company service.
func NewCompanyService(companies repository.CompanyRepository, logger *slog.Logger) *CompanyService {
	return &CompanyService{
		companies: companies,
		logger:    logger,
	}
}

// CreateCompanyInput holds the parameters for registering a company.
type CreateCompanyInput struct {
	Name string
}

// CreateCompany registers a new company with a slug derived from its name.
// Two distinct names can collide on the same slug ("Acme Inc." and
// "Acme, Inc!"); the second registration retries once with an ID-suffixed
// slug instead of failing.
func (s *CompanyService) CreateCompany(ctx context.Context, input CreateCompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if utf8.RuneCountInString(name) > MaxCompanyNameLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", MaxCompanyNameLength))
	}

	company := &domain.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug.Generate(name),
		CreatedAt: time.Now().UTC(),
	}

	err := s.companies.Create(ctx, company)
	if err != nil && company.Slug != "" && isSlugConflict(err) {
		suffixed := fmt.Sprintf("%s-%s", company.Slug, company.ID[:8])
		s.logger.InfoContext(ctx, "company slug taken, retrying with suffix",
			slog.String("company_id", company.ID),
			slog.String("slug", company.Slug),
			slog.String("suffixed_slug", suffixed),
		)
		company.Slug = suffixed
		err = s.companies.Create(ctx, company)
	}
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	s.logger.InfoContext(ctx, "company created",
		slog.String("company_id", company.ID),
		slog.String("name", company.Name),
		slog.String("slug", company.Slug),
	)

	return company, nil
}

// GetCompany retrieves a company by its ID.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company by id: %w", err)
	}
	return company, nil
}

// ListCompanies returns a filtered, paginated list of companies.
func (s *CompanyService) ListCompanies(ctx context.Context, filter repository.CompanyFilter) ([]domain.Company, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	companies, total, err := s.companies.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	return companies, total, nil
}

// isSlugConflict reports whether the error is a uniqueness conflict on the
// slug rather than the name.
func isSlugConflict(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return errors.Is(appErr, apperrors.ErrAlreadyExists) && strings.Contains(appErr.Message, "slug")
}
