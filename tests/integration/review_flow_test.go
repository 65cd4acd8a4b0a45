package integration

import (
	"testing"
)

// TestSubmitReviewFlow walks the primary path: register a company, submit a
// review, check the aggregated rating, edit the review, and read the edit
// history.
func TestSubmitReviewFlow(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	// Register a company.
	companyName := uniqueCompanyName("Acme Integration")
	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 201)
	companyID := extractString(t, data, "data.id")

	// Submit a review. The end year arrives as a string and must come back
	// canonicalized to a number.
	status, data = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews", map[string]interface{}{
		"employment_status":     "former",
		"employment_start_year": 2018,
		"employment_end_year":   "2022",
		"overall_rating":        5,
		"locale_of_submission":  "ja",
		"title":                 "良い職場でした",
		"body":                  "チームの雰囲気が良く、学びが多かったです。",
	})
	requireStatus(t, status, 201)
	reviewID := extractString(t, data, "data.id")

	if endYear := extractFloat(t, data, "data.employment_end_year"); endYear != 2022 {
		t.Fatalf("expected canonicalized end year 2022, got %v", endYear)
	}

	// The rating summary reflects the single review.
	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/rating")
	requireStatus(t, status, 200)
	if count := extractFloat(t, data, "data.review_count"); count != 1 {
		t.Fatalf("expected review_count 1, got %v", count)
	}
	if avg := extractString(t, data, "data.average"); avg != "5.0" {
		t.Fatalf("expected average 5.0, got %s", avg)
	}

	// Edit the review's rating, attributing the edit via X-Actor.
	status, _ = httpPatchWithHeaders(t, baseURL(reviewPort)+"/api/v1/reviews/"+reviewID,
		map[string]interface{}{"overall_rating": 3},
		map[string]string{"X-Actor": "integration-suite"},
	)
	requireStatus(t, status, 200)

	// The summary follows the edit.
	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/rating")
	requireStatus(t, status, 200)
	if avg := extractString(t, data, "data.average"); avg != "3.0" {
		t.Fatalf("expected average 3.0 after edit, got %s", avg)
	}

	// History holds exactly one snapshot: the pre-edit state.
	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/reviews/"+reviewID+"/history")
	requireStatus(t, status, 200)

	snapshots, ok := extractField(data, "data").([]interface{})
	if !ok || len(snapshots) != 1 {
		t.Fatalf("expected exactly one history snapshot, got %v", extractField(data, "data"))
	}
	snapshot, ok := snapshots[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected snapshot object, got %T", snapshots[0])
	}
	if v := snapshot["version"]; v != float64(1) {
		t.Errorf("expected snapshot version 1, got %v", v)
	}
	if r := snapshot["overall_rating"]; r != float64(5) {
		t.Errorf("expected snapshot to hold pre-edit rating 5, got %v", r)
	}
	if by := snapshot["edited_by"]; by != "integration-suite" {
		t.Errorf("expected edited_by integration-suite, got %v", by)
	}

	t.Logf("review %s created, edited, and audited for company %s", reviewID, companyID)
}

// TestSubmitReviewCurrentEmployee verifies that a current employee's end year
// is normalized to the "present" sentinel regardless of input.
func TestSubmitReviewCurrentEmployee(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": uniqueCompanyName("Present Sentinel Works"),
	})
	requireStatus(t, status, 201)
	companyID := extractString(t, data, "data.id")

	status, data = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews", map[string]interface{}{
		"employment_status":     "current",
		"employment_start_year": "2020",
		"employment_end_year":   nil,
		"overall_rating":        6,
		"locale_of_submission":  "en",
	})
	requireStatus(t, status, 201)

	if endYear := extractString(t, data, "data.employment_end_year"); endYear != "present" {
		t.Fatalf("expected end year \"present\" for a current employee, got %q", endYear)
	}
}

// TestSubmitReviewPeriodValidation verifies that the employment period is
// validated server-side with per-field error kinds.
func TestSubmitReviewPeriodValidation(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": uniqueCompanyName("Validation Target"),
	})
	requireStatus(t, status, 201)
	companyID := extractString(t, data, "data.id")

	// A former employee must supply an end year.
	status, data = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews", map[string]interface{}{
		"employment_status":     "former",
		"employment_start_year": 2015,
		"overall_rating":        4,
		"locale_of_submission":  "en",
	})
	requireStatus(t, status, 422)

	if code := extractString(t, data, "error.code"); code != "VALIDATION_FAILED" {
		t.Fatalf("expected error code VALIDATION_FAILED, got %s", code)
	}
	if kind := extractString(t, data, "error.fields.employment_end_year"); kind != "MissingEndYear" {
		t.Fatalf("expected field kind MissingEndYear, got %s", kind)
	}
}

// TestRecomputeRating verifies that the operational rebuild endpoint produces
// a summary consistent with the incremental one.
func TestRecomputeRating(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": uniqueCompanyName("Recompute Target"),
	})
	requireStatus(t, status, 201)
	companyID := extractString(t, data, "data.id")

	for _, rating := range []int{2, 7} {
		status, _ = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews", map[string]interface{}{
			"employment_status":     "current",
			"employment_start_year": 2021,
			"overall_rating":        rating,
			"locale_of_submission":  "zh",
		})
		requireStatus(t, status, 201)
	}

	status, data = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/rating/recompute", nil)
	requireStatus(t, status, 200)

	if sum := extractFloat(t, data, "data.rating_sum"); sum != 9 {
		t.Fatalf("expected recomputed rating_sum 9, got %v", sum)
	}
	if count := extractFloat(t, data, "data.review_count"); count != 2 {
		t.Fatalf("expected recomputed review_count 2, got %v", count)
	}
	if avg := extractString(t, data, "data.average"); avg != "4.5" {
		t.Fatalf("expected average 4.5, got %s", avg)
	}
}

// TestListReviewsFiltered verifies pagination and the employment status
// filter on a company's review list.
func TestListReviewsFiltered(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": uniqueCompanyName("Filter Target"),
	})
	requireStatus(t, status, 201)
	companyID := extractString(t, data, "data.id")

	for _, st := range []string{"current", "former"} {
		body := map[string]interface{}{
			"employment_status":     st,
			"employment_start_year": 2019,
			"overall_rating":        4,
			"locale_of_submission":  "en",
		}
		if st == "former" {
			body["employment_end_year"] = 2023
		}
		status, _ = httpPost(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews", body)
		requireStatus(t, status, 201)
	}

	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID+"/reviews?employment_status=former")
	requireStatus(t, status, 200)

	reviews, ok := extractField(data, "data").([]interface{})
	if !ok {
		t.Fatalf("expected data array, got %T", extractField(data, "data"))
	}
	if len(reviews) != 1 {
		t.Fatalf("expected 1 former-employee review, got %d", len(reviews))
	}
	if total := extractFloat(t, data, "total_count"); total != 1 {
		t.Fatalf("expected total_count 1, got %v", total)
	}
}
