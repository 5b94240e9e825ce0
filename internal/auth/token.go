package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/habitaro/authgate/internal/models"
)

var (
	// ErrWrongPurpose is returned when a structurally valid token is
	// presented to a consumer expecting a different purpose.
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

var expirationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseExpiration converts a compact duration string (e.g. "15m", "7d")
// into a time.Duration. Malformed input is an error, never a silent
// default; the config layer treats that error as fatal at startup.
func ParseExpiration(s string) (time.Duration, error) {
	m := expirationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid expiration %q: expected <number><s|m|h|d>", s)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiration %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid expiration %q: must be positive", s)
	}

	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid expiration %q: unknown unit", s)
}

// ExtraClaims carries the optional claim set attached at issuance. Role and
// CompanyID ride on access and refresh tokens; the summaries only appear on
// checkout tokens.
type ExtraClaims struct {
	Role         string
	CompanyID    string
	User         *models.UserSummary
	Subscription *models.SubscriptionSummary
	Plan         *models.PlanSummary
}

// TokenManager mints and verifies purpose-scoped JWTs. Each purpose has an
// independently configured TTL; the purpose travels as a signed claim and
// every consumer must ask for the purpose it expects.
type TokenManager struct {
	secret string
	ttls   map[models.TokenPurpose]time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, accessTTL, refreshTTL, checkoutTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		ttls: map[models.TokenPurpose]time.Duration{
			models.PurposeAccess:   accessTTL,
			models.PurposeRefresh:  refreshTTL,
			models.PurposeCheckout: checkoutTTL,
		},
		now: time.Now,
	}
}

// SetClock overrides the issuance clock, for tests.
func (tm *TokenManager) SetClock(now func() time.Time) {
	tm.now = now
}

// TTL returns the configured lifetime for a purpose.
func (tm *TokenManager) TTL(purpose models.TokenPurpose) time.Duration {
	return tm.ttls[purpose]
}

// Generate mints a signed token for the subject with the purpose's TTL.
func (tm *TokenManager) Generate(subjectID string, purpose models.TokenPurpose, extra ExtraClaims) (string, error) {
	ttl, ok := tm.ttls[purpose]
	if !ok || ttl <= 0 {
		return "", fmt.Errorf("no TTL configured for purpose %q", purpose)
	}

	now := tm.now()
	claims := &models.TokenClaims{
		Purpose:      purpose,
		Role:         extra.Role,
		CompanyID:    extra.CompanyID,
		User:         extra.User,
		Subscription: extra.Subscription,
		Plan:         extra.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}

	return tokenString, nil
}

// Verify parses a token and enforces that its purpose matches the one the
// caller expects. A checkout token is never accepted where an access token
// is expected, and vice versa, even with a valid signature.
func (tm *TokenManager) Verify(tokenString string, expected models.TokenPurpose) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return tm.now() }))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Purpose != expected {
		return nil, ErrWrongPurpose
	}

	return claims, nil
}
