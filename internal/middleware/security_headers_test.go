package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func applySecurityHeaders(env, proto string) *httptest.ResponseRecorder {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: env})

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	if proto != "" {
		req.Header.Set("X-Forwarded-Proto", proto)
	}
	w := httptest.NewRecorder()

	handler(testHandler).ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_AlwaysSet(t *testing.T) {
	w := applySecurityHeaders("development", "")

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
	}

	for _, tt := range tests {
		if got := w.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: got %q, want %q", tt.header, got, tt.expected)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyInProductionOverHTTPS(t *testing.T) {
	if got := applySecurityHeaders("production", "https").Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("expected HSTS header for production HTTPS")
	}
	if got := applySecurityHeaders("production", "").Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("unexpected HSTS header for plain HTTP: %q", got)
	}
	if got := applySecurityHeaders("development", "https").Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("unexpected HSTS header in development: %q", got)
	}
}
