package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func get(t *testing.T, hs *HealthServer, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	hs.server.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	hs := NewHealthServer("127.0.0.1:0")

	rec := get(t, hs, http.MethodGet, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /health = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}

	rec = get(t, hs, http.MethodPost, "/health")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want 405", rec.Code)
	}
}

func TestReady(t *testing.T) {
	hs := NewHealthServer("127.0.0.1:0")

	rec := get(t, hs, http.MethodGet, "/ready")
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != "not ready" {
		t.Errorf("before MarkReady: %d %q", rec.Code, rec.Body.String())
	}

	hs.MarkReady("0.0.0.0:8080")
	rec = get(t, hs, http.MethodGet, "/ready")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready 0.0.0.0:8080" {
		t.Errorf("after MarkReady: %d %q", rec.Code, rec.Body.String())
	}

	hs.MarkNotReady()
	rec = get(t, hs, http.MethodGet, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("after MarkNotReady: %d, want 503", rec.Code)
	}
}
