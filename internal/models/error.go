package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrInvalidCredentials covers both "no such user" and "wrong password".
	// The message must stay byte-identical between the two cases so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAccountDeactivated   = errors.New("account has been deactivated")
	ErrSubscriptionRequired = errors.New("an active subscription is required")
)

// EmailNotVerifiedError is returned when the password was correct but the
// account's email is still unverified. Carrying the email is safe here: the
// caller has already proven knowledge of the credentials.
type EmailNotVerifiedError struct {
	Email string
}

func (e *EmailNotVerifiedError) Error() string {
	return "email address not verified"
}

// TooManyAttemptsError is the terminal outcome of a brute-force block. It is
// a decision value surfaced as an error at the orchestrator boundary, never
// raised from the guard itself.
type TooManyAttemptsError struct {
	Reason  BlockReason
	RetryAt time.Time
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry after %s", e.RetryAt.Format(time.RFC3339))
}
