package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/service"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/httputil"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/pagination"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/validator"
)

// CompanyHandler handles HTTP requests for company and rating endpoints.
type CompanyHandler struct {
	companies *service.CompanyService
	ratings   *service.RatingService
	logger    *slog.Logger
}

// NewCompanyHandler creates a new company HTTP handler.
func NewCompanyHandler(companies *service.CompanyService, ratings *service.RatingService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
		ratings:   ratings,
		logger:    logger,
	}
}

// --- Request / Response DTOs ---

// CreateCompanyRequest is the JSON request body for registering a company.
type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// RatingResponse is the JSON shape of a company's rating summary. The
// average is rendered from the exact sum/count pair and rounded only here.
type RatingResponse struct {
	CompanyID   string    `json:"company_id"`
	RatingSum   int64     `json:"rating_sum"`
	ReviewCount int       `json:"review_count"`
	Average     string    `json:"average"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newRatingResponse(s *domain.CompanyRatingSummary) RatingResponse {
	return RatingResponse{
		CompanyID:   s.CompanyID,
		RatingSum:   s.RatingSum,
		ReviewCount: s.ReviewCount,
		Average:     s.AverageDisplay(),
		UpdatedAt:   s.UpdatedAt,
	}
}

// --- Handlers ---

// CreateCompany handles POST /api/v1/companies
func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	company, err := h.companies.CreateCompany(r.Context(), service.CreateCompanyInput{Name: req.Name})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: company})
}

// ListCompanies handles GET /api/v1/companies
func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)
	filter := repository.CompanyFilter{
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	if v := r.URL.Query().Get("name"); v != "" {
		filter.Name = &v
	}

	companies, total, err := h.companies.ListCompanies(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(companies, total, filter.Page, filter.PerPage))
}

// GetCompany handles GET /api/v1/companies/{id}
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	company, err := h.companies.GetCompany(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: company})
}

// GetRating handles GET /api/v1/companies/{id}/rating
func (h *CompanyHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.ratings.GetRatingSummary(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newRatingResponse(summary)})
}

// RecomputeRating handles POST /api/v1/companies/{id}/rating/recompute
func (h *CompanyHandler) RecomputeRating(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	summary, err := h.ratings.RecomputeRatingSummary(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newRatingResponse(summary)})
}
