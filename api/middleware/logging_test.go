package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/logger"
)

func TestLoggingPassesResponseThrough(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", resp.Code)
	}
	if resp.Body.String() != "short and stout" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestLoggingHandlesSilentHandler(t *testing.T) {
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no explicit WriteHeader
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", resp.Code)
	}
}
