package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/stocks", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rr.Code)
	}
	if called {
		t.Error("Preflight should not reach the handler")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Allow-Origin *, got %q", got)
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("Expected X-Correlation-ID req-123, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Correlation-ID"); len(got) != 8 {
		t.Errorf("Expected generated 8 char correlation id, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}

func TestResponseWriter_CapturesStatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("short and stout"))

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 15 {
		t.Errorf("Expected 15 bytes, got %d", rw.bytesWritten)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("Expected error when underlying writer cannot hijack")
	}
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	handler := loggingMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestSnapshotMiddleware(t *testing.T) {
	c := cache.New()
	handler := snapshotMiddleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stocks", nil))
	if got := rr.Header().Get(headerSnapshotCycle); got != "" {
		t.Errorf("Expected no cycle header before publish, got %q", got)
	}

	published := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	c.Publish(&models.Snapshot{CycleID: "cycle-1", PublishedAt: published, Degraded: true})

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stocks", nil))
	if got := rr.Header().Get(headerSnapshotCycle); got != "cycle-1" {
		t.Errorf("Expected cycle-1, got %q", got)
	}
	if got := rr.Header().Get(headerSnapshotPublished); got != "2025-01-10T10:00:00Z" {
		t.Errorf("Expected RFC3339 publish time, got %q", got)
	}
	if got := rr.Header().Get(headerSnapshotDegraded); got != "true" {
		t.Errorf("Expected degraded true, got %q", got)
	}
}

func TestSnapshotMiddleware_NilCache(t *testing.T) {
	handler := snapshotMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}
