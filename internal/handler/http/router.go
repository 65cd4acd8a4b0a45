package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/service"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/health"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/middleware"
)

// NewRouter creates a chi router with all review engine routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	companyService *service.CompanyService,
	ratingService *service.RatingService,
	formService *service.FormService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("review-engine"))
	r.Use(middleware.Tracing("review-engine"))
	r.Use(middleware.Actor())
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	companyHandler := NewCompanyHandler(companyService, ratingService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	formHandler := NewFormHandler(formService, logger)

	r.Route("/api/v1/companies", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", companyHandler.CreateCompany)
		r.Get("/", companyHandler.ListCompanies)
		r.Get("/{id}", companyHandler.GetCompany)
		r.Get("/{id}/rating", companyHandler.GetRating)
		r.Post("/{id}/rating/recompute", companyHandler.RecomputeRating)
		r.Post("/{id}/reviews", reviewHandler.CreateReview)
		r.Get("/{id}/reviews", reviewHandler.ListReviews)
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/{id}", reviewHandler.GetReview)
		r.Patch("/{id}", reviewHandler.UpdateReview)
		r.Get("/{id}/history", reviewHandler.ListHistory)
	})

	r.Route("/api/v1/form/sessions", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", formHandler.StartSession)
		r.Get("/{id}", formHandler.GetSession)
		r.Delete("/{id}", formHandler.CloseSession)
		r.Post("/{id}/locale", formHandler.SwitchLocale)
		r.Post("/{id}/employment-status", formHandler.ChangeEmploymentStatus)
		r.Patch("/{id}/draft", formHandler.UpdateDraft)
	})

	// The catalog is embedded at build time, so clients may cache it.
	r.With(middleware.CacheControl(3600)).Get("/api/v1/i18n/catalog", formHandler.GetCatalog)

	return r
}
