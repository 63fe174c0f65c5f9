package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePathKnownRoutes(t *testing.T) {
	for _, path := range []string{
		"/auth/register",
		"/auth/token",
		"/auth/token/refresh",
		"/user/me",
		"/healthz",
		"/readyz",
		"/metrics",
	} {
		if got := normalizePath(path); got != path {
			t.Fatalf("normalizePath(%q) = %q, want unchanged", path, got)
		}
	}
}

func TestNormalizePathCollapsesUnknown(t *testing.T) {
	for _, path := range []string{
		"/",
		"/auth/token/",
		"/wp-admin/setup-config.php",
		"/.env",
		"/auth/register/extra",
	} {
		if got := normalizePath(path); got != "other" {
			t.Fatalf("normalizePath(%q) = %q, want other", path, got)
		}
	}
}

func TestInstrumentPassesThrough(t *testing.T) {
	handler := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/random/path", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
