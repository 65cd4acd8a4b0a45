package integration

import (
	"net/url"
	"strings"
	"testing"
)

// TestCompanyRegistrationFlow registers a company, reads it back, and checks
// the derived slug.
func TestCompanyRegistrationFlow(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	companyName := uniqueCompanyName("Slug Probe Holdings")
	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 201)

	companyID := extractString(t, data, "data.id")
	slug := extractString(t, data, "data.slug")
	if !strings.HasPrefix(slug, "slug-probe-holdings") {
		t.Fatalf("expected slug derived from the name, got %q", slug)
	}

	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/companies/"+companyID)
	requireStatus(t, status, 200)
	if name := extractString(t, data, "data.name"); name != companyName {
		t.Fatalf("expected name %q, got %q", companyName, name)
	}
	if got := extractString(t, data, "data.slug"); got != slug {
		t.Fatalf("expected slug %q on read-back, got %q", slug, got)
	}

	t.Logf("company %s registered with slug %s", companyID, slug)
}

// TestCompanyDuplicateName verifies that registering the same name twice is
// rejected with a conflict.
func TestCompanyDuplicateName(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	companyName := uniqueCompanyName("Duplicate Probe")
	status, _ := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 201)

	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 409)
	if code := extractString(t, data, "error.code"); code != "ALREADY_EXISTS" {
		t.Fatalf("expected error code ALREADY_EXISTS, got %s", code)
	}
}

// TestCompanyCJKNameHasNoSlug verifies that a name with no ASCII
// representation produces a company without a slug.
func TestCompanyCJKNameHasNoSlug(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	// A unique CJK-only name: the numeric suffix would survive slugging, so
	// spell the uniqueness in CJK digits via the timestamp mapped onto them.
	companyName := "株式会社" + cjkDigits(t)
	status, data := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 201)

	if slugField := extractField(data, "data.slug"); slugField != nil {
		t.Fatalf("expected no slug for a CJK-only name, got %v", slugField)
	}
}

// TestCompanyListFilter verifies the name filter on the company list.
func TestCompanyListFilter(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	companyName := uniqueCompanyName("Listed Filter Target")
	status, _ := httpPost(t, baseURL(reviewPort)+"/api/v1/companies", map[string]interface{}{
		"name": companyName,
	})
	requireStatus(t, status, 201)

	status, data := httpGet(t, baseURL(reviewPort)+"/api/v1/companies?name="+url.QueryEscape(companyName))
	requireStatus(t, status, 200)

	companies, ok := extractField(data, "data").([]interface{})
	if !ok {
		t.Fatalf("expected data array, got %T", extractField(data, "data"))
	}
	if len(companies) != 1 {
		t.Fatalf("expected exactly one match for %q, got %d", companyName, len(companies))
	}
	first, ok := companies[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected company object, got %T", companies[0])
	}
	if first["name"] != companyName {
		t.Fatalf("expected filtered result %q, got %v", companyName, first["name"])
	}
}

// TestCompanyLookupErrors covers the malformed-ID and unknown-ID paths.
func TestCompanyLookupErrors(t *testing.T) {
	skipIfNotRunning(t, reviewPort)

	status, data := httpGet(t, baseURL(reviewPort)+"/api/v1/companies/not-a-uuid")
	requireStatus(t, status, 400)
	if code := extractString(t, data, "error.code"); code != "INVALID_PARAMETER" {
		t.Fatalf("expected error code INVALID_PARAMETER, got %s", code)
	}

	status, data = httpGet(t, baseURL(reviewPort)+"/api/v1/companies/"+uniqueUUID())
	requireStatus(t, status, 404)
	if code := extractString(t, data, "error.code"); code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", code)
	}
}
