package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	pkghttp "github.com/habitaro/authgate/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestWriteFailure(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteFailure(w, 400, "BAD_REQUEST", "Test message")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.FailureResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.Type)
	assert.Equal(t, "Test message", resp.Message)
	assert.Empty(t, resp.RetryAt)
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteSuccess(w, 200, "ok", map[string]string{"hello": "world"})

	assert.Equal(t, 200, w.Code)

	var resp pkghttp.SuccessResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)
}

func TestWriteTooManyAttempts(t *testing.T) {
	w := httptest.NewRecorder()
	retryAt := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)

	pkghttp.WriteTooManyAttempts(w, "Too many attempts. Please wait 15 minutes.", retryAt)

	assert.Equal(t, 429, w.Code)

	var resp pkghttp.FailureResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", resp.Type)
	assert.Equal(t, "2026-08-01T12:30:00Z", resp.RetryAt)
}

func TestWriteEmailNotVerified(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteEmailNotVerified(w, "Please verify your email.", "user@example.com")

	assert.Equal(t, 400, w.Code)

	var resp pkghttp.FailureResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", resp.Type)
	assert.Equal(t, "user@example.com", resp.Email)
}

func TestWriteInvalidCredentials(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteInvalidCredentials(w, "Invalid email or password")

	assert.Equal(t, 401, w.Code)

	var resp pkghttp.FailureResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Type)
}
