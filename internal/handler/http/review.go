package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/service"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/httputil"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/middleware"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/pagination"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for submitting a review. The
// year fields decode from string, number, or null without failing; period
// validation happens in the domain so malformed years come back as field
// kinds, not decode errors.
type CreateReviewRequest struct {
	EmploymentStatus    string           `json:"employment_status" validate:"required,oneof=current former"`
	EmploymentStartYear domain.YearField `json:"employment_start_year"`
	EmploymentEndYear   domain.YearField `json:"employment_end_year"`
	OverallRating       int              `json:"overall_rating" validate:"required,gte=1,lte=7"`
	LocaleOfSubmission  string           `json:"locale_of_submission" validate:"required,oneof=en ja zh"`
	Title               string           `json:"title" validate:"max=200"`
	Body                string           `json:"body" validate:"max=20000"`
}

// UpdateReviewRequest is the JSON request body for editing a review. Absent
// fields keep their stored value.
type UpdateReviewRequest struct {
	EmploymentStatus    *string           `json:"employment_status" validate:"omitempty,oneof=current former"`
	EmploymentStartYear *domain.YearField `json:"employment_start_year"`
	EmploymentEndYear   *domain.YearField `json:"employment_end_year"`
	OverallRating       *int              `json:"overall_rating" validate:"omitempty,gte=1,lte=7"`
	LocaleOfSubmission  *string           `json:"locale_of_submission" validate:"omitempty,oneof=en ja zh"`
	Title               *string           `json:"title" validate:"omitempty,max=200"`
	Body                *string           `json:"body" validate:"omitempty,max=20000"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/companies/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	companyID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	input := service.CreateReviewInput{
		CompanyID:           companyID.String(),
		EmploymentStatus:    req.EmploymentStatus,
		EmploymentStartYear: req.EmploymentStartYear,
		EmploymentEndYear:   req.EmploymentEndYear,
		OverallRating:       req.OverallRating,
		LocaleOfSubmission:  req.LocaleOfSubmission,
		Title:               req.Title,
		Body:                req.Body,
	}

	review, err := h.service.CreateReview(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateReviewRequest
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

	input := service.UpdateReviewInput{
		EmploymentStatus:    req.EmploymentStatus,
		EmploymentStartYear: req.EmploymentStartYear,
		EmploymentEndYear:   req.EmploymentEndYear,
		OverallRating:       req.OverallRating,
		LocaleOfSubmission:  req.LocaleOfSubmission,
		Title:               req.Title,
		Body:                req.Body,
	}

	// The edit is attributed to the caller-reported identity from the Actor
	// middleware; the snapshot records it as edited_by.
	editedBy := middleware.ActorFromContext(r.Context())

	review, err := h.service.UpdateReview(r.Context(), id.String(), input, editedBy)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListReviews handles GET /api/v1/companies/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	companyID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p := pagination.FromRequest(r)
	filter := repository.ReviewFilter{
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	if v := r.URL.Query().Get("employment_status"); v != "" {
		filter.EmploymentStatus = &v
	}
	if v := r.URL.Query().Get("locale"); v != "" {
		filter.Locale = &v
	}

	reviews, total, err := h.service.ListReviews(r.Context(), companyID.String(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, filter.Page, filter.PerPage))
}

// ListHistory handles GET /api/v1/reviews/{id}/history
func (h *ReviewHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	snapshots, err := h.service.ListHistory(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if snapshots == nil {
		snapshots = []domain.ReviewHistorySnapshot{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snapshots})
}
