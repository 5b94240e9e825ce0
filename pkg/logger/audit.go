package logger

import (
	"context"
	"log/slog"
	"time"
)

// LoginEvent captures the auditable outcome of one login attempt.
type LoginEvent struct {
	Event              string // LOGIN_SUCCESS, LOGIN_FAILED, LOGIN_BLOCKED
	UserID             string
	Email              string
	IPAddress          string
	FailureReason      string
	BlockReason        string
	RetryAt            *time.Time
	RemainingAttempts  *int
	SubscriptionStatus string
}

// AuditLogger emits structured security audit events alongside regular
// application logs.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogLoginAttempt logs the outcome of a login attempt. Emails are masked;
// the raw address never reaches the log stream.
func (al *AuditLogger) LogLoginAttempt(event LoginEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event", event.Event),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	if event.BlockReason != "" {
		attrs = append(attrs, slog.String("block_reason", event.BlockReason))
	}
	if event.RetryAt != nil {
		attrs = append(attrs, slog.String("retry_at", event.RetryAt.UTC().Format(time.RFC3339)))
	}
	if event.RemainingAttempts != nil {
		attrs = append(attrs, slog.Int("remaining_attempts", *event.RemainingAttempts))
	}
	if event.SubscriptionStatus != "" {
		attrs = append(attrs, slog.String("subscription_status", event.SubscriptionStatus))
	}

	if event.Event == "LOGIN_SUCCESS" {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}
