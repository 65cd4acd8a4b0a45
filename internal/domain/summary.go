package domain

import (
	"math/big"
	"time"
)

// CompanyRatingSummary is the derived rating aggregate for one company.
// Storing the integer sum and count keeps the average exact and the
// incremental update path a pure integer delta.
type CompanyRatingSummary struct {
	CompanyID   string    `json:"company_id"`
	RatingSum   int64     `json:"rating_sum"`
	ReviewCount int       `json:"review_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Average returns the exact rational rating_sum / review_count, or nil when
// the company has no reviews. Callers round only for display.
func (s *CompanyRatingSummary) Average() *big.Rat {
	if s == nil || s.ReviewCount == 0 {
		return nil
	}
	return new(big.Rat).SetFrac64(s.RatingSum, int64(s.ReviewCount))
}

// AverageDisplay renders the average rounded to one decimal, or "" when the
// company has no reviews.
func (s *CompanyRatingSummary) AverageDisplay() string {
	avg := s.Average()
	if avg == nil {
		return ""
	}
	return avg.FloatString(1)
}

// ApplyCreate folds a newly created review's rating into the summary.
func (s *CompanyRatingSummary) ApplyCreate(rating int) {
	s.RatingSum += int64(rating)
	s.ReviewCount++
}

// ApplyUpdate folds a rating edit into the summary. The count is unchanged;
// only the delta between the old and new rating moves the sum.
func (s *CompanyRatingSummary) ApplyUpdate(oldRating, newRating int) {
	s.RatingSum += int64(newRating) - int64(oldRating)
}

// Equal reports whether two summaries agree on sum and count. Used by the
// aggregation self-check comparing the incremental path against a full
// recompute.
func (s *CompanyRatingSummary) Equal(other *CompanyRatingSummary) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.RatingSum == other.RatingSum && s.ReviewCount == other.ReviewCount
}
