package domain

import (
	"time"
)

// ReviewHistorySnapshot is an immutable copy of a review's fields captured
// before an edit overwrites them. Snapshots are append-only: they are never
// mutated or reordered, and the per-review version increases by one with
// every edit.
type ReviewHistorySnapshot struct {
	ID                  string    `json:"id"`
	ReviewID            string    `json:"review_id"`
	Version             int       `json:"version"`
	CompanyID           string    `json:"company_id"`
	EmploymentStatus    string    `json:"employment_status"`
	EmploymentStartYear YearField `json:"employment_start_year"`
	EmploymentEndYear   YearField `json:"employment_end_year"`
	OverallRating       int       `json:"overall_rating"`
	LocaleOfSubmission  string    `json:"locale_of_submission"`
	Title               string    `json:"title"`
	Body                string    `json:"body"`
	EditedBy            string    `json:"edited_by"`
	EditedAt            time.Time `json:"edited_at"`
}

// SnapshotOf captures the review's current state as a snapshot with the
// given editor identity. The snapshot ID and version are assigned by the
// store when the snapshot is appended.
func SnapshotOf(r *Review, editedBy string, editedAt time.Time) *ReviewHistorySnapshot {
	return &ReviewHistorySnapshot{
		ReviewID:            r.ID,
		CompanyID:           r.CompanyID,
		EmploymentStatus:    r.EmploymentStatus,
		EmploymentStartYear: r.EmploymentStartYear,
		EmploymentEndYear:   r.EmploymentEndYear,
		OverallRating:       r.OverallRating,
		LocaleOfSubmission:  r.LocaleOfSubmission,
		Title:               r.Title,
		Body:                r.Body,
		EditedBy:            editedBy,
		EditedAt:            editedAt,
	}
}
