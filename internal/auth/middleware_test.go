package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, expectUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserFromContext(r)
		require.NotNil(t, claims)
		assert.Equal(t, expectUserID, claims.Subject)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAccessToken_ValidToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, 30*time.Minute)

	token, err := tm.Generate("user123", models.PurposeAccess, auth.ExtraClaims{Role: "member"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	auth.RequireAccessToken(tm)(protectedHandler(t, "user123")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAccessToken_MissingHeader(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, 30*time.Minute)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	w := httptest.NewRecorder()

	auth.RequireAccessToken(tm)(protectedHandler(t, "")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAccessToken_MalformedHeader(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, 30*time.Minute)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()

	auth.RequireAccessToken(tm)(protectedHandler(t, "")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAccessToken_RejectsRefreshPurpose(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, 30*time.Minute)

	refreshToken, err := tm.Generate("user123", models.PurposeRefresh, auth.ExtraClaims{})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	w := httptest.NewRecorder()

	auth.RequireAccessToken(tm)(protectedHandler(t, "")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAccessToken_RejectsCheckoutPurpose(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 15*time.Minute, 7*24*time.Hour, 30*time.Minute)

	checkoutToken, err := tm.Generate("user123", models.PurposeCheckout, auth.ExtraClaims{})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+checkoutToken)
	w := httptest.NewRecorder()

	auth.RequireAccessToken(tm)(protectedHandler(t, "")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
