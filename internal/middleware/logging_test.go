package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func logRequest(target string) string {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := SecureLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", target, nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestSecureLogger_LogsRequestLine(t *testing.T) {
	line := logRequest("/api/auth/login")

	for _, want := range []string{"http_request", `"method":"POST"`, `"path":"/api/auth/login"`, `"status":200`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestSecureLogger_RedactsSensitiveQuery(t *testing.T) {
	line := logRequest("/api/auth/verify?token=secret-value")

	if strings.Contains(line, "secret-value") {
		t.Errorf("sensitive query value leaked into log: %s", line)
	}
	if !strings.Contains(line, "?[REDACTED]") {
		t.Errorf("expected redacted query marker in log: %s", line)
	}
}

func TestSecureLogger_KeepsHarmlessQuery(t *testing.T) {
	line := logRequest("/api/health?verbose=1")

	if !strings.Contains(line, `"path":"/api/health?verbose=1"`) {
		t.Errorf("harmless query should be logged as-is: %s", line)
	}
}
