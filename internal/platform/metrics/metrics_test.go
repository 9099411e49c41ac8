package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSearch(t *testing.T) {
	r := NewRegistry()
	r.RecordSearch("capacity", true, 4, time.Millisecond)
	r.RecordSearch("capacity", false, 9, time.Millisecond)
	r.RecordSearch("capacity", true, 1, time.Millisecond)

	if got := testutil.ToFloat64(r.SearchesTotal.WithLabelValues("capacity", "found")); got != 2 {
		t.Fatalf("found searches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.SearchesTotal.WithLabelValues("capacity", "not_found")); got != 1 {
		t.Fatalf("not found searches = %v, want 1", got)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.RecordSearch("destination", true, 1, time.Millisecond)
	r.RecordUnload("full", "ok")
	r.RecordCommitRetry()
	r.RecordScanCache(true)
	r.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
}

func TestHandlerExposesCollectors(t *testing.T) {
	r := NewRegistry()
	r.RecordCommitRetry()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "disposal_commit_retries_total 1") {
		t.Fatalf("metrics output missing retry counter:\n%s", rec.Body.String())
	}
}
