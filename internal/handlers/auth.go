package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/models"
	"github.com/habitaro/authgate/internal/services"
	pkghttp "github.com/habitaro/authgate/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, ipAddress string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
	cookies  auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
		cookies:  cookies,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse represents the access-token claims echoed back to the client
type SessionResponse struct {
	UserID    string    `json:"userId"`
	Role      string    `json:"role,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), req.Email, req.Password, ipAddress)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	auth.SetRefreshTokenCookie(w, result.RefreshToken, h.cookies)
	pkghttp.WriteSuccess(w, http.StatusOK, "Login successful", result)
}

// writeLoginError maps pipeline errors onto the wire envelope. This is the
// only place login errors become HTTP responses.
func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	var tooMany *models.TooManyAttemptsError
	var notVerified *models.EmailNotVerifiedError

	switch {
	case errors.As(err, &tooMany):
		pkghttp.WriteTooManyAttempts(w, blockedMessage(tooMany.RetryAt), tooMany.RetryAt)
	case errors.As(err, &notVerified):
		pkghttp.WriteEmailNotVerified(w, "Please verify your email address before logging in", notVerified.Email)
	case errors.Is(err, models.ErrInvalidCredentials):
		// Must stay byte-identical for every credential failure.
		pkghttp.WriteInvalidCredentials(w, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrAccountDeactivated):
		pkghttp.WriteAccountDeactivated(w, "Your account has been deactivated. Contact support for assistance.")
	case errors.Is(err, models.ErrSubscriptionRequired):
		pkghttp.WriteSubscriptionRequired(w, "An active subscription is required to sign in.")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// blockedMessage renders the human-readable lockout message with a
// minutes-remaining estimate, floored at one minute.
func blockedMessage(retryAt time.Time) string {
	minutes := int(math.Ceil(time.Until(retryAt).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	if minutes == 1 {
		return "Too many failed attempts. Try again in 1 minute."
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)
}

// Refresh rotates the token pair using the refresh cookie
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.GetRefreshTokenCookie(r)
	if err != nil || refreshToken == "" {
		pkghttp.WriteUnauthorized(w, "Missing refresh token")
		return
	}

	pair, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountDeactivated):
			auth.ClearRefreshTokenCookie(w, h.cookies)
			pkghttp.WriteAccountDeactivated(w, "Your account has been deactivated. Contact support for assistance.")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid refresh token")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetRefreshTokenCookie(w, pair.RefreshToken, h.cookies)
	pkghttp.WriteSuccess(w, http.StatusOK, "Token refreshed", pair)
}

// Session returns the claims of the presented access token
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp := SessionResponse{
		UserID:    claims.Subject,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Session active", resp)
}

// Logout clears the refresh cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearRefreshTokenCookie(w, h.cookies)
	pkghttp.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}
