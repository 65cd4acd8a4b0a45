package domain

import (
	"time"
)

// Employment status constants.
const (
	EmploymentStatusCurrent = "current"
	EmploymentStatusFormer  = "former"
)

// Overall rating bounds (inclusive).
const (
	RatingMin = 1
	RatingMax = 7
)

// Review represents one employee's assessment of one company.
type Review struct {
	ID                  string    `json:"id"`
	CompanyID           string    `json:"company_id"`
	EmploymentStatus    string    `json:"employment_status"`
	EmploymentStartYear YearField `json:"employment_start_year"`
	EmploymentEndYear   YearField `json:"employment_end_year"`
	OverallRating       int       `json:"overall_rating"`
	LocaleOfSubmission  string    `json:"locale_of_submission"`
	Title               string    `json:"title"`
	Body                string    `json:"body"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ValidEmploymentStatuses returns the set of valid employment statuses.
func ValidEmploymentStatuses() []string {
	return []string{EmploymentStatusCurrent, EmploymentStatusFormer}
}

// IsValidEmploymentStatus checks whether the given status string is a valid
// employment status.
func IsValidEmploymentStatus(status string) bool {
	for _, s := range ValidEmploymentStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidRating checks whether the rating is within the allowed scale.
func IsValidRating(rating int) bool {
	return rating >= RatingMin && rating <= RatingMax
}
