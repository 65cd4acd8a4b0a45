// Package audit re-verifies company rating summaries asynchronously. The
// write path already self-checks inside its transaction; this is the second
// line of defense, catching drift introduced by anything that bypassed it
// (manual data fixes, partial restores, older writers).
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/domain"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/event"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository/rediscache"
)

var driftRepaired = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "rating_audit_drift_repaired_total",
	Help: "Total number of rating summaries repaired by the asynchronous audit",
})

func init() {
	prometheus.MustRegister(driftRepaired)
}

// Auditor compares a company's stored rating summary against a full
// recompute and repairs it when they disagree.
type Auditor struct {
	tx       repository.TxManager
	cache    *rediscache.SummaryCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewAuditor creates a new rating summary auditor.
func NewAuditor(tx repository.TxManager, cache *rediscache.SummaryCache, producer *event.Producer, logger *slog.Logger) *Auditor {
	return &Auditor{
		tx:       tx,
		cache:    cache,
		producer: producer,
		logger:   logger,
	}
}

// Verify recomputes the company's summary under the same row lock the write
// path takes and overwrites the stored one if they disagree. Repairs are
// followed by a cache refresh and a rating.recomputed event, both
// best-effort.
func (a *Auditor) Verify(ctx context.Context, companyID string) error {
	var (
		stored   domain.CompanyRatingSummary
		repaired *domain.CompanyRatingSummary
	)
	err := a.tx.WithinTx(ctx, func(_ repository.ReviewRepository, companies repository.CompanyRepository) error {
		locked, err := companies.GetRatingSummaryForUpdate(ctx, companyID)
		if err != nil {
			return fmt.Errorf("lock rating summary: %w", err)
		}
		stored = *locked

		fresh, err := companies.RecomputeRatingSummary(ctx, companyID)
		if err != nil {
			return fmt.Errorf("recompute rating summary: %w", err)
		}
		if locked.Equal(fresh) {
			return nil
		}

		fresh.UpdatedAt = time.Now().UTC()
		if err := companies.SaveRatingSummary(ctx, fresh); err != nil {
			return fmt.Errorf("save repaired rating summary: %w", err)
		}
		repaired = fresh
		return nil
	})
	if err != nil {
		return err
	}

	if repaired == nil {
		a.logger.DebugContext(ctx, "rating summary verified",
			slog.String("company_id", companyID),
		)
		return nil
	}

	driftRepaired.Inc()
	a.logger.ErrorContext(ctx, "rating summary drift repaired",
		slog.String("company_id", companyID),
		slog.Int64("stored_sum", stored.RatingSum),
		slog.Int("stored_count", stored.ReviewCount),
		slog.Int64("repaired_sum", repaired.RatingSum),
		slog.Int("repaired_count", repaired.ReviewCount),
	)

	if err := a.cache.Set(ctx, repaired); err != nil {
		a.logger.WarnContext(ctx, "failed to refresh rating summary cache after repair",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	}
	if err := a.producer.PublishRatingRecomputed(ctx, repaired); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish rating.recomputed event after repair",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
