package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/models"
	pkgauth "github.com/habitaro/authgate/pkg/auth"
	pkglogger "github.com/habitaro/authgate/pkg/logger"
)

// UserRepository defines the interface for user lookups
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService orchestrates the login pipeline: brute-force gate, credential
// check, account-state checks, subscription resolution, and token issuance.
type AuthService struct {
	users       UserRepository
	guard       *BruteForceGuard
	resolver    *SubscriptionResolver
	fieldGate   *CustomFieldGate
	tm          *auth.TokenManager
	timing      *auth.TimingDelay
	clock       Clock
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserRepository,
	guard *BruteForceGuard,
	resolver *SubscriptionResolver,
	fieldGate *CustomFieldGate,
	tm *auth.TokenManager,
	timing *auth.TimingDelay,
	clock Clock,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		guard:       guard,
		resolver:    resolver,
		fieldGate:   fieldGate,
		tm:          tm,
		timing:      timing,
		clock:       clock,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse represents the authenticated user in the HTTP response
type UserResponse struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	Name                   string `json:"name"`
	Role                   string `json:"role"`
	HasPendingCustomFields bool   `json:"hasPendingCustomFields"`
}

// PlanResponse represents the resolved plan in the HTTP response
type PlanResponse struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
}

// SubscriptionResponse represents the resolved subscription in the HTTP response
type SubscriptionResponse struct {
	ID            string                    `json:"id"`
	Status        models.SubscriptionStatus `json:"status"`
	StartDate     time.Time                 `json:"startDate"`
	EndDate       *time.Time                `json:"endDate,omitempty"`
	Plan          *PlanResponse             `json:"plan,omitempty"`
	DaysRemaining *int                      `json:"daysRemaining,omitempty"`
}

// LoginResult is the outcome of a successful login. The refresh token is
// delivered as a cookie, never in the response body.
type LoginResult struct {
	User              *UserResponse         `json:"user"`
	Subscription      *SubscriptionResponse `json:"subscription"`
	AccessToken       string                `json:"accessToken"`
	CheckoutToken     string                `json:"checkoutToken,omitempty"`
	CheckoutExpiresAt *time.Time            `json:"checkoutExpiresAt,omitempty"`
	RefreshToken      string                `json:"-"`
}

// TokenPair is the outcome of a refresh-token rotation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// Login runs the full authentication pipeline for one attempt. The order of
// checks is fixed: lockout gate, credentials, email verification, account
// state, then subscription. Only credential failures feed the lockout
// counters; later rejections mean the caller already holds a valid password.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	decision, err := s.guard.IsBlocked(ctx, ipAddress, email)
	if err != nil {
		s.logger.Error("brute force check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if decision.Blocked {
		retryAt := decision.RetryAt
		s.auditLogger.LogLoginAttempt(pkglogger.LoginEvent{
			Event:       "LOGIN_BLOCKED",
			Email:       email,
			IPAddress:   ipAddress,
			BlockReason: string(decision.Reason),
			RetryAt:     &retryAt,
		})
		return nil, &models.TooManyAttemptsError{Reason: decision.Reason, RetryAt: retryAt}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// A missing user, a user with no password set, and a wrong password are
	// indistinguishable from the outside: same error, same counters, same
	// padded response time.
	if user == nil || !pkgauth.VerifyPassword(password, user.PasswordHash) {
		return nil, s.credentialFailure(ctx, user, email, ipAddress)
	}

	if !user.IsEmailVerified {
		s.auditLogger.LogLoginAttempt(pkglogger.LoginEvent{
			Event:         "LOGIN_FAILED",
			UserID:        user.ID,
			Email:         email,
			IPAddress:     ipAddress,
			FailureReason: "email_not_verified",
		})
		return nil, &models.EmailNotVerifiedError{Email: user.Email}
	}

	if !user.IsActive {
		s.auditLogger.LogLoginAttempt(pkglogger.LoginEvent{
			Event:         "LOGIN_FAILED",
			UserID:        user.ID,
			Email:         email,
			IPAddress:     ipAddress,
			FailureReason: "account_deactivated",
		})
		return nil, models.ErrAccountDeactivated
	}

	sub, err := s.resolver.Resolve(ctx, user)
	if err != nil {
		s.logger.Error("subscription resolution failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Any resolved subscription admits the user; the computed status rides
	// along in the response for the client to act on. Only a user with no
	// subscription at all (own or inherited) is turned away.
	if sub == nil {
		s.auditLogger.LogLoginAttempt(pkglogger.LoginEvent{
			Event:         "LOGIN_FAILED",
			UserID:        user.ID,
			Email:         email,
			IPAddress:     ipAddress,
			FailureReason: "subscription_required",
		})
		return nil, models.ErrSubscriptionRequired
	}

	now := s.clock.Now()
	computed := sub.ComputedStatus(now)

	// The attempt only counts as successful once the user is fully admitted.
	if err := s.guard.RegisterSuccessfulAttempt(ctx, ipAddress, email); err != nil {
		s.logger.Warn("failed to clear attempt records", slog.Any("error", err))
	}

	extra := auth.ExtraClaims{Role: user.Role}
	if user.CompanyID != nil {
		extra.CompanyID = *user.CompanyID
	}

	accessToken, err := s.tm.Generate(user.ID, models.PurposeAccess, extra)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	refreshToken, err := s.tm.Generate(user.ID, models.PurposeRefresh, extra)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result := &LoginResult{
		User: &UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		Subscription: buildSubscriptionResponse(sub, computed, now),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	// Pending subscriptions get a purpose-scoped checkout token carrying
	// snapshots for the payment page. The snapshots are a convenience; the
	// payment flow re-reads authoritative state before charging.
	if computed == models.SubscriptionPending {
		checkoutToken, err := s.tm.Generate(user.ID, models.PurposeCheckout, auth.ExtraClaims{
			User:         &models.UserSummary{Name: user.Name, Email: user.Email},
			Subscription: &models.SubscriptionSummary{ID: sub.ID, Status: computed},
			Plan:         &models.PlanSummary{ID: sub.Plan.ID, Name: sub.Plan.Name, Price: sub.Plan.Price},
		})
		if err != nil {
			s.logger.Error("failed to generate checkout token", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		expiresAt := now.Add(s.tm.TTL(models.PurposeCheckout))
		result.CheckoutToken = checkoutToken
		result.CheckoutExpiresAt = &expiresAt
	}

	result.User.HasPendingCustomFields = s.fieldGate.HasPendingRequiredFields(ctx, user, sub)

	s.auditLogger.LogLoginAttempt(pkglogger.LoginEvent{
		Event:              "LOGIN_SUCCESS",
		UserID:             user.ID,
		Email:              email,
		IPAddress:          ipAddress,
		SubscriptionStatus: string(computed),
	})

	return result, nil
}

// credentialFailure records the failed attempt, pads the response time, and
// returns the shared invalid-credentials error. The failure that arms a
// block still gets the credentials response; the lockout only answers from
// the pre-check on the following attempt.
func (s *AuthService) credentialFailure(ctx context.Context, user *models.User, email, ipAddress string) error {
	if _, err := s.guard.RegisterFailedAttempt(ctx, ipAddress, email); err != nil {
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
	}

	event := pkglogger.LoginEvent{
		Event:         "LOGIN_FAILED",
		Email:         email,
		IPAddress:     ipAddress,
		FailureReason: "invalid_credentials",
	}
	if user != nil {
		event.UserID = user.ID
	}
	if remaining, err := s.guard.RemainingAttempts(ctx, ipAddress, email); err == nil {
		event.RemainingAttempts = &remaining
	}
	s.auditLogger.LogLoginAttempt(event)

	s.timing.Wait()

	return models.ErrInvalidCredentials
}

// Refresh rotates a token pair from a refresh token. Account state is
// re-checked so that deactivation takes effect at the next rotation even
// though the refresh token itself is still cryptographically valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tm.Verify(refreshToken, models.PurposeRefresh)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by id", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		return nil, models.ErrAccountDeactivated
	}

	extra := auth.ExtraClaims{Role: user.Role}
	if user.CompanyID != nil {
		extra.CompanyID = *user.CompanyID
	}

	accessToken, err := s.tm.Generate(user.ID, models.PurposeAccess, extra)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	newRefreshToken, err := s.tm.Generate(user.ID, models.PurposeRefresh, extra)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func buildSubscriptionResponse(sub *models.Subscription, computed models.SubscriptionStatus, now time.Time) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:            sub.ID,
		Status:        computed,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		DaysRemaining: sub.DaysRemaining(now),
	}
	if sub.Plan != nil {
		resp.Plan = &PlanResponse{
			Name:     sub.Plan.Name,
			Price:    sub.Plan.Price,
			Features: sub.Plan.Features,
		}
	}
	return resp
}
