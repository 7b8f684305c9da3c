package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestLoggingMiddleware(t *testing.T) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, &slog.HandlerOptions{Level: slog.LevelInfo}))

	status := http.StatusOK
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte("ok"))
	}))

	serve := func(target string, requestID any) string {
		logOutput.Reset()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, requestID))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return logOutput.String()
	}

	t.Run("health and metrics are not logged", func(t *testing.T) {
		for _, path := range []string{"/health", "/metrics"} {
			if logs := serve(path, "id-1"); logs != "" {
				t.Errorf("Expected no logs for %s, got %s", path, logs)
			}
		}
	})

	t.Run("lookup is logged", func(t *testing.T) {
		logs := serve("/medicine/aspirin", "id-2")
		for _, want := range []string{"HTTP request", "path=/medicine/aspirin", "request_id=id-2", "status_code=200", "bytes_written=2"} {
			if !strings.Contains(logs, want) {
				t.Errorf("Expected %q in %s", want, logs)
			}
		}
		if strings.Contains(logs, "query=") {
			t.Errorf("Query should be omitted when empty: %s", logs)
		}
	})

	t.Run("query is logged when present", func(t *testing.T) {
		logs := serve("/medicine?name=advil", "id-3")
		if !strings.Contains(logs, `query="name=advil"`) {
			t.Errorf("Expected query in %s", logs)
		}
	})

	t.Run("non-string request id", func(t *testing.T) {
		logs := serve("/medicine/aspirin", 12345)
		if !strings.Contains(logs, "request_id=unknown") {
			t.Errorf("Expected request_id=unknown, got %s", logs)
		}
	})

	t.Run("server errors are warnings", func(t *testing.T) {
		status = http.StatusBadGateway
		defer func() { status = http.StatusOK }()

		logs := serve("/medicine/aspirin", "id-4")
		if !strings.Contains(logs, "level=WARN") {
			t.Errorf("Expected WARN level, got %s", logs)
		}
	})
}
