package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"testing"
	"time"
)

// reviewPort is the port the review engine listens on by default.
const reviewPort = 8080

// baseURL returns the base URL for the review engine.
func baseURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// uniqueCompanyName generates a unique company name to avoid collisions with
// data from previous runs.
func uniqueCompanyName(prefix string) string {
	return fmt.Sprintf("%s %d-%d", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// cjkDigits renders the current nanosecond timestamp in kanji numerals.
// The result is unique per call yet has no ASCII slug representation.
func cjkDigits(t *testing.T) string {
	t.Helper()
	kanji := []rune("〇一二三四五六七八九")
	var b strings.Builder
	for _, d := range fmt.Sprintf("%d", time.Now().UnixNano()) {
		b.WriteRune(kanji[d-'0'])
	}
	return b.String()
}

// uniqueUUID generates a random UUID v4 for test data.
// Not cryptographically secure but fine for tests.
func uniqueUUID() string {
	b := make([]byte, 16)
	for i := range b {
		b[i] = byte(rand.Intn(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// skipIfNotRunning performs a quick health check against the service.
// If the service is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T, port int) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL(port) + "/health/live")
	if err != nil {
		t.Skipf("service on port %d not reachable (Docker not running?): %v", port, err)
	}
	resp.Body.Close()
}

// httpGet performs an HTTP GET request and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPost performs an HTTP POST request with a JSON body.
func httpPost(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, nil)
}

// httpPostWithHeaders performs an HTTP POST request with a JSON body and custom headers.
func httpPostWithHeaders(t *testing.T, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, headers)
}

// httpPatch performs an HTTP PATCH request with a JSON body.
func httpPatch(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPatch, url, body, nil)
}

// httpPatchWithHeaders performs an HTTP PATCH request with a JSON body and custom headers.
func httpPatchWithHeaders(t *testing.T, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return doJSONRequest(t, http.MethodPatch, url, body, headers)
}

// httpDelete performs an HTTP DELETE request.
func httpDelete(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("creating DELETE request for %s failed: %v", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// doJSONRequest is the internal helper for JSON HTTP requests.
func doJSONRequest(t *testing.T, method, url string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not JSON; return the raw string in a "raw" key for debugging.
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
// For example, extractField(data, "data.draft.title") navigates
// data["data"]["draft"]["title"].
func extractField(data map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// extractString is a convenience wrapper around extractField that returns a string.
func extractString(t *testing.T, data map[string]interface{}, path string) string {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected string at path %q, got nil", path)
	}
	s, ok := val.(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %T: %v", path, val, val)
	}
	return s
}

// extractFloat is a convenience wrapper that returns a float64.
func extractFloat(t *testing.T, data map[string]interface{}, path string) float64 {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected number at path %q, got nil", path)
	}
	f, ok := val.(float64)
	if !ok {
		t.Fatalf("expected float64 at path %q, got %T: %v", path, val, val)
	}
	return f
}
