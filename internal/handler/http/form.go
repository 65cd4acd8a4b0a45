package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/form"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/service"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/httputil"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/validator"
)

// FormHandler handles HTTP requests for form session and catalog endpoints.
type FormHandler struct {
	service *service.FormService
	logger  *slog.Logger
}

// NewFormHandler creates a new form HTTP handler.
func NewFormHandler(svc *service.FormService, logger *slog.Logger) *FormHandler {
	return &FormHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// StartFormSessionRequest is the optional JSON request body for opening a
// form session. An explicit locale wins over Accept-Language detection.
type StartFormSessionRequest struct {
	Locale string `json:"locale"`
}

// SwitchLocaleRequest is the JSON request body for switching a session's
// display locale.
type SwitchLocaleRequest struct {
	Locale string `json:"locale" validate:"required"`
}

// ChangeEmploymentStatusRequest is the JSON request body for selecting the
// employment status in the form.
type ChangeEmploymentStatusRequest struct {
	EmploymentStatus string `json:"employment_status" validate:"required,oneof=current former"`
}

// UpdateDraftRequest is the JSON request body for merging entered values
// into the session draft. Draft values are not validated here; the
// authoritative checks run on submission.
type UpdateDraftRequest struct {
	CompanyID           *string `json:"company_id"`
	EmploymentStartYear *string `json:"employment_start_year"`
	EmploymentEndYear   *string `json:"employment_end_year"`
	OverallRating       *int    `json:"overall_rating"`
	Title               *string `json:"title" validate:"omitempty,max=200"`
	Body                *string `json:"body" validate:"omitempty,max=20000"`
}

// acceptLanguageTag returns the first language tag of an Accept-Language
// header value, stripped of any quality weight.
func acceptLanguageTag(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

// --- Handlers ---

// StartSession handles POST /api/v1/form/sessions
//
// The session opens in the locale detected from the request: the body's
// explicit locale when present, otherwise the first Accept-Language tag.
// Detection never fails; unrecognized tags fall back to English.
func (h *FormHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req StartFormSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// The body is optional; locale detection falls back to the header.
		req = StartFormSessionRequest{}
	}

	tag := req.Locale
	if tag == "" {
		tag = acceptLanguageTag(r.Header.Get("Accept-Language"))
	}

	sess := h.service.StartSession(r.Context(), tag)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sess.View()})
}

// GetSession handles GET /api/v1/form/sessions/{id}
func (h *FormHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sess, err := h.service.GetSession(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.View()})
}

// SwitchLocale handles POST /api/v1/form/sessions/{id}/locale
func (h *FormHandler) SwitchLocale(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SwitchLocaleRequest
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

	sess, err := h.service.SwitchLocale(r.Context(), id.String(), req.Locale)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.View()})
}

// ChangeEmploymentStatus handles POST /api/v1/form/sessions/{id}/employment-status
func (h *FormHandler) ChangeEmploymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ChangeEmploymentStatusRequest
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

	sess, err := h.service.ChangeEmploymentStatus(r.Context(), id.String(), req.EmploymentStatus)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.View()})
}

// UpdateDraft handles PATCH /api/v1/form/sessions/{id}/draft
func (h *FormHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateDraftRequest
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

	update := form.DraftUpdate{
		CompanyID:           req.CompanyID,
		EmploymentStartYear: req.EmploymentStartYear,
		EmploymentEndYear:   req.EmploymentEndYear,
		OverallRating:       req.OverallRating,
		Title:               req.Title,
		Body:                req.Body,
	}

	sess, err := h.service.UpdateDraft(r.Context(), id.String(), update)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess.View()})
}

// CloseSession handles DELETE /api/v1/form/sessions/{id}
func (h *FormHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	h.service.CloseSession(r.Context(), id.String())
	w.WriteHeader(http.StatusNoContent)
}

// GetCatalog handles GET /api/v1/i18n/catalog
func (h *FormHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.ResolveCatalog(r.Context(), r.URL.Query().Get("locale"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: catalog})
}
