package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/models"
	"github.com/habitaro/authgate/internal/services"
	pkghttp "github.com/habitaro/authgate/pkg/http"
)

func newAuthTestHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, &pkghttp.IPConfig{}, auth.CookieConfig{
		Secure: false,
		MaxAge: int((7 * 24 * time.Hour).Seconds()),
	})
}

func loginBody() map[string]string {
	return map[string]string{"email": "member@example.com", "password": "hunter2hunter2"}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
			assert.NotEmpty(t, ipAddress)
			return &services.LoginResult{
				User:         &services.UserResponse{ID: "user1", Email: email},
				Subscription: &services.SubscriptionResponse{ID: "sub1", Status: models.SubscriptionActive},
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
			}, nil
		},
	}
	handler := newAuthTestHandler(service)

	w := httptest.NewRecorder()
	handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", loginBody()))

	var resp pkghttp.SuccessResponse
	DecodeJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "access-jwt", data["accessToken"])

	// The refresh token travels only in the cookie, never in the body.
	assert.NotContains(t, w.Body.String(), "refresh-jwt")

	cookie := findCookie(w, "refreshToken")
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-jwt", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((7*24*time.Hour).Seconds()), cookie.MaxAge)
}

func TestAuthHandler_Login_TooManyAttempts(t *testing.T) {
	retryAt := time.Now().Add(14*time.Minute + 30*time.Second)
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.TooManyAttemptsError{Reason: models.BlockReasonEmail, RetryAt: retryAt}
		},
	}
	handler := newAuthTestHandler(service)

	w := httptest.NewRecorder()
	handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", loginBody()))

	var resp pkghttp.FailureResponse
	DecodeJSONResponse(t, w, http.StatusTooManyRequests, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", resp.Type)
	assert.Contains(t, resp.Message, "15 minutes")

	parsed, err := time.Parse(time.RFC3339, resp.RetryAt)
	require.NoError(t, err)
	assert.WithinDuration(t, retryAt, parsed, time.Second)
}

func TestAuthHandler_Login_EmailNotVerified(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
			return nil, &models.EmailNotVerifiedError{Email: "member@example.com"}
		},
	}
	handler := newAuthTestHandler(service)

	w := httptest.NewRecorder()
	handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", loginBody()))

	var resp pkghttp.FailureResponse
	DecodeJSONResponse(t, w, http.StatusBadRequest, &resp)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", resp.Type)
	assert.Equal(t, "member@example.com", resp.Email)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrInvalidCredentials
		},
	}
	handler := newAuthTestHandler(service)

	w := httptest.NewRecorder()
	handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", loginBody()))

	var resp pkghttp.FailureResponse
	DecodeJSONResponse(t, w, http.StatusUnauthorized, &resp)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Type)
	assert.Equal(t, "invalid email or password", resp.Message)
}

func TestAuthHandler_Login_ForbiddenOutcomes(t *testing.T) {
	cases := []struct {
		name         string
		err          error
		expectedType string
	}{
		{"deactivated account", models.ErrAccountDeactivated, "ACCOUNT_DEACTIVATED"},
		{"missing subscription", models.ErrSubscriptionRequired, "SUBSCRIPTION_REQUIRED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &MockAuthService{
				LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
					return nil, tc.err
				},
			}
			handler := newAuthTestHandler(service)

			w := httptest.NewRecorder()
			handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", loginBody()))

			var resp pkghttp.FailureResponse
			DecodeJSONResponse(t, w, http.StatusForbidden, &resp)
			assert.Equal(t, tc.expectedType, resp.Type)
		})
	}
}

func TestAuthHandler_Login_ValidationFailures(t *testing.T) {
	called := false
	service := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error) {
			called = true
			return nil, nil
		},
	}
	handler := newAuthTestHandler(service)

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
		handler.Login(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", map[string]string{"email": "member@example.com"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, NewTestRequest(t, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email", "password": "x"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.False(t, called, "service should not run on invalid input")
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	handler := newAuthTestHandler(&MockAuthService{})

	w := httptest.NewRecorder()
	handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_RotatesCookie(t *testing.T) {
	service := &MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return &services.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}
	handler := newAuthTestHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})

	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	var resp pkghttp.SuccessResponse
	DecodeJSONResponse(t, w, http.StatusOK, &resp)

	cookie := findCookie(w, "refreshToken")
	require.NotNil(t, cookie)
	assert.Equal(t, "new-refresh", cookie.Value)
	assert.NotContains(t, w.Body.String(), "new-refresh")
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	service := &MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := newAuthTestHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "garbage"})

	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	handler := newAuthTestHandler(&MockAuthService{})

	w := httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	cookie := findCookie(w, "refreshToken")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandler_Session(t *testing.T) {
	handler := newAuthTestHandler(&MockAuthService{})

	claims := &models.TokenClaims{
		Purpose:   models.PurposeAccess,
		Role:      "member",
		CompanyID: "company1",
	}
	claims.Subject = "user1"

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, claims))

	w := httptest.NewRecorder()
	handler.Session(w, req)

	var resp pkghttp.SuccessResponse
	DecodeJSONResponse(t, w, http.StatusOK, &resp)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user1", data["userId"])
	assert.Equal(t, "member", data["role"])
}
