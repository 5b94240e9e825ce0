package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// FailureResponse is the standard error envelope for auth endpoints
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`           // Human-readable message
	Type    string `json:"type"`              // Machine-readable type code
	RetryAt string `json:"retryAt,omitempty"` // ISO-8601, rate-limit responses only
	Email   string `json:"email,omitempty"`   // Metadata for verification flows
}

// SuccessResponse is the standard success envelope
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteSuccess writes a JSON success envelope with the given status code
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteFailure writes a JSON error envelope with the given status code
func WriteFailure(w http.ResponseWriter, statusCode int, typeCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(FailureResponse{
		Success: false,
		Message: message,
		Type:    typeCode,
	})
}

// WriteTooManyAttempts writes the 429 envelope for brute-force blocks,
// including the retryAt timestamp the caller can use for backoff
func WriteTooManyAttempts(w http.ResponseWriter, message string, retryAt time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(FailureResponse{
		Success: false,
		Message: message,
		Type:    "TOO_MANY_ATTEMPTS",
		RetryAt: retryAt.UTC().Format(time.RFC3339),
	})
}

// WriteEmailNotVerified writes the 400 envelope carrying the account email,
// safe to reveal because the password was already verified
func WriteEmailNotVerified(w http.ResponseWriter, message, email string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	_ = json.NewEncoder(w).Encode(FailureResponse{
		Success: false,
		Message: message,
		Type:    "EMAIL_NOT_VERIFIED",
		Email:   email,
	})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func WriteInvalidCredentials(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func WriteAccountDeactivated(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusForbidden, "ACCOUNT_DEACTIVATED", message)
}

func WriteSubscriptionRequired(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusForbidden, "SUBSCRIPTION_REQUIRED", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
